package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"centesimi/internal/core"
	"centesimi/internal/metrics"
)

// commandFunc runs one command for a chat and returns the reply text. A
// non-empty reply together with an error means the command already produced
// a user-facing message; the error is still logged and counted.
type commandFunc func(ctx context.Context, chatID int64, text string) (string, error)

// command wraps a commandFunc with rate limiting, metrics, timeout and the
// reply plumbing shared by every handler.
func (b *Bot) command(name string, fn commandFunc) bot.HandlerFunc {
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if !b.limiter.allow(chatID) {
			metrics.CommandErrors.WithLabelValues(name, "rate_limited").Inc()
			b.reply(ctx, chatID, "Too many requests. Give it a moment.")
			return
		}

		metrics.CommandsTotal.WithLabelValues(name).Inc()
		start := time.Now()

		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		reply, err := fn(ctx, chatID, update.Message.Text)
		metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.CommandErrors.WithLabelValues(name, metrics.ErrorType(err)).Inc()
			b.logger.ErrorContext(ctx, "Command failed",
				"command", name, "chat_id", chatID, "error", err)
			if reply == "" {
				reply = userMessage(err)
			}
		}

		b.reply(ctx, chatID, reply)
	}
}

func (b *Bot) cmdHelp(ctx context.Context, chatID int64, text string) (string, error) {
	return usageText, nil
}

func (b *Bot) cmdListCategories(ctx context.Context, chatID int64, text string) (string, error) {
	cats, err := b.registry.List(ctx, chatID)
	if err != nil {
		return "", err
	}
	if len(cats) == 0 {
		return "No categories yet. Create one with /nc <alias> <name>.", nil
	}
	return formatCategories(cats), nil
}

// cmdNewCategory creates a category. With both arguments it finishes in one
// message; with fewer it asks for the missing pieces one question at a time.
func (b *Bot) cmdNewCategory(ctx context.Context, chatID int64, text string) (string, error) {
	args := commandArgs(text)
	switch len(args) {
	case 0:
		b.dialogs.set(chatID, dialogState{step: stepNewCategoryAlias})
		return "Which alias should the new category have?", nil
	case 1:
		return b.dialogNewCategoryAlias(ctx, chatID, args[0])
	}
	alias, name := args[0], strings.Join(args[1:], " ")

	cat, created, err := b.registry.ResolveOrCreate(ctx, chatID, alias, name)
	if err != nil {
		return "", err
	}
	if !created {
		return fmt.Sprintf("Alias %q is already taken by %s.", cat.Alias, cat.Name), nil
	}
	return fmt.Sprintf("Category saved: %s (%s)", cat.Alias, cat.Name), nil
}

// cmdUpdateCategory renames a category, inline or one question at a time.
func (b *Bot) cmdUpdateCategory(ctx context.Context, chatID int64, text string) (string, error) {
	args := commandArgs(text)
	switch len(args) {
	case 0:
		cats, err := b.registry.List(ctx, chatID)
		if err != nil {
			return "", err
		}
		if len(cats) == 0 {
			return "No categories yet. Create one with /nc <alias> <name>.", nil
		}
		b.dialogs.set(chatID, dialogState{step: stepRenameAlias})
		return formatCategories(cats) + "\n\nWhich one should be renamed?", nil
	case 1:
		return b.dialogRenameAlias(ctx, chatID, args[0])
	}
	alias, name := args[0], strings.Join(args[1:], " ")

	cat, err := b.registry.Rename(ctx, chatID, alias, name)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Sprintf("Unknown category %q. See /lc for the list.", alias), err
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Category updated: %s (%s)", cat.Alias, cat.Name), nil
}

func (b *Bot) cmdCost(ctx context.Context, chatID int64, text string) (string, error) {
	args := commandArgs(text)
	if len(args) != 3 {
		return "Usage: /cost <alias> <YYYY-MM-DD> <amount>", nil
	}
	alias := args[0]

	cat, err := b.registry.Find(ctx, chatID, alias)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Sprintf("Unknown category %q. Create it with /nc %s <name>.", alias, alias), err
	}
	if err != nil {
		return "", err
	}

	day, err := parseDay(args[1])
	if err != nil {
		return "Provide the date as YYYY-MM-DD.", nil
	}
	cents, err := core.ParseAmountCents(args[2])
	if err != nil {
		return "Amounts look like 12.50 (no sign, at most two decimals).", err
	}

	entry, err := b.ledger.Record(ctx, chatID, cat.ID, day.Unix(), cents)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Recorded %s on %s (%s).", core.FormatCents(entry.AmountCents), cat.Alias, args[1]), nil
}

func (b *Bot) cmdRemoveLast(ctx context.Context, chatID int64, text string) (string, error) {
	entry, err := b.ledger.RemoveLast(ctx, chatID)
	if errors.Is(err, core.ErrNotFound) {
		return "Nothing to remove.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %s (entry %d).", core.FormatCents(entry.AmountCents), entry.ID), nil
}

func (b *Bot) cmdStatMonth(ctx context.Context, chatID int64, text string) (string, error) {
	from, to := monthWindow(b.now())
	breakdown, err := b.aggregator.BreakdownByCategory(ctx, chatID, core.EntryFilter{From: &from, To: &to})
	if err != nil {
		return "", err
	}
	return formatBreakdown("This month", breakdown), nil
}

func (b *Bot) cmdStatPeriod(ctx context.Context, chatID int64, text string) (string, error) {
	args := commandArgs(text)
	if len(args) != 2 {
		return "Usage: /sp <YYYY-MM-DD> <YYYY-MM-DD> (end day excluded)", nil
	}

	fromDay, err := parseDay(args[0])
	if err != nil {
		return "Provide the start date as YYYY-MM-DD.", nil
	}
	toDay, err := parseDay(args[1])
	if err != nil {
		return "Provide the end date as YYYY-MM-DD.", nil
	}

	from, to := fromDay.Unix(), toDay.Unix()
	breakdown, err := b.aggregator.BreakdownByCategory(ctx, chatID, core.EntryFilter{From: &from, To: &to})
	if err != nil {
		return "", err
	}
	return formatBreakdown(fmt.Sprintf("From %s to %s", args[0], args[1]), breakdown), nil
}

// cmdFreeText is the default handler. It answers the pending dialogue
// question if there is one, otherwise it reads the message as a spending.
func (b *Bot) cmdFreeText(ctx context.Context, chatID int64, text string) (string, error) {
	if st := b.dialogs.get(chatID); st.step != stepNone {
		return b.continueDialog(ctx, chatID, st, text)
	}
	return b.recordFreeText(ctx, chatID, text)
}

// recordFreeText scans the message pieces for an amount and a category
// alias, in any arrangement and with any other words around them. When only
// one half is present the bot asks for the other; the last matching piece
// wins when several qualify.
func (b *Bot) recordFreeText(ctx context.Context, chatID int64, text string) (string, error) {
	pieces := strings.Fields(text)
	amountCents, hasAmount := scanAmount(pieces)

	var cat core.Category
	hasCategory := false
	for _, piece := range pieces {
		alias := core.NormalizeAlias(piece)
		if core.ValidateAlias(alias) != nil {
			continue
		}
		c, err := b.registry.Find(ctx, chatID, alias)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		cat, hasCategory = c, true
	}

	switch {
	case hasAmount && hasCategory:
		entry, err := b.ledger.Record(ctx, chatID, cat.ID, b.now().Unix(), amountCents)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s to %s.", core.FormatCents(entry.AmountCents), cat.Alias), nil
	case hasCategory:
		b.dialogs.set(chatID, dialogState{step: stepCostAmount, alias: cat.Alias, categoryID: cat.ID})
		return fmt.Sprintf("How much went to %s?", cat.Alias), nil
	case hasAmount:
		b.dialogs.set(chatID, dialogState{step: stepCostAlias, amountCents: amountCents})
		return fmt.Sprintf("Which category should take %s?", core.FormatCents(amountCents)), nil
	default:
		return "Send <alias> <amount> to record a spending, or /help for the commands.", nil
	}
}

// userMessage turns residual errors into a short reply when the command did
// not provide one itself.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrStoreUnavailable):
		return "Storage is unavailable right now. Try again in a moment."
	case errors.Is(err, core.ErrAggregationOverflow):
		return "The total is too large to compute."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amounts look like 12.50 (no sign, at most two decimals)."
	case errors.Is(err, core.ErrInvalidCategory):
		return "That category does not belong to this chat."
	case errors.Is(err, core.ErrNotFound):
		return "Nothing found."
	case errors.Is(err, core.ErrEmptyAlias), errors.Is(err, core.ErrEmptyName):
		return "Alias and name must not be empty."
	default:
		return "Something went wrong. Try again."
	}
}
