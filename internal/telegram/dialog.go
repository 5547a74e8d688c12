package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"centesimi/internal/core"
)

// continueDialog routes a message to the step the conversation is waiting
// on. Each step either answers with the next question, repeats the current
// one when the answer does not fit, or finishes and clears the dialogue.
func (b *Bot) continueDialog(ctx context.Context, chatID int64, st dialogState, text string) (string, error) {
	switch st.step {
	case stepNewCategoryAlias:
		return b.dialogNewCategoryAlias(ctx, chatID, text)
	case stepNewCategoryName:
		return b.dialogNewCategoryName(ctx, chatID, st.alias, text)
	case stepRenameAlias:
		return b.dialogRenameAlias(ctx, chatID, text)
	case stepRenameName:
		return b.dialogRenameName(ctx, chatID, st.alias, text)
	case stepCostAlias:
		return b.dialogCostAlias(ctx, chatID, st.amountCents, text)
	case stepCostAmount:
		return b.dialogCostAmount(ctx, chatID, st, text)
	}
	b.dialogs.clear(chatID)
	return b.recordFreeText(ctx, chatID, text)
}

// dialogNewCategoryAlias consumes the alias answer of a /nc dialogue. A bad
// or taken alias keeps the question open so the next message can try again.
func (b *Bot) dialogNewCategoryAlias(ctx context.Context, chatID int64, answer string) (string, error) {
	alias := core.NormalizeAlias(answer)
	if err := core.ValidateAlias(alias); err != nil {
		b.dialogs.set(chatID, dialogState{step: stepNewCategoryAlias})
		return "Aliases are a single word of at most 64 characters. Try another.", nil
	}
	existing, err := b.registry.Find(ctx, chatID, alias)
	if err == nil {
		b.dialogs.set(chatID, dialogState{step: stepNewCategoryAlias})
		return fmt.Sprintf("Alias %q is already taken by %s. Try another.", existing.Alias, existing.Name), nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return "", err
	}
	b.dialogs.set(chatID, dialogState{step: stepNewCategoryName, alias: alias})
	return fmt.Sprintf("Now send the full name for %q.", alias), nil
}

func (b *Bot) dialogNewCategoryName(ctx context.Context, chatID int64, alias, answer string) (string, error) {
	name := strings.TrimSpace(answer)
	if err := core.ValidateName(name); err != nil {
		return "Names can be up to 200 characters. Try another.", nil
	}
	cat, created, err := b.registry.ResolveOrCreate(ctx, chatID, alias, name)
	if err != nil {
		return "", err
	}
	b.dialogs.clear(chatID)
	if !created {
		return fmt.Sprintf("Alias %q is already taken by %s.", cat.Alias, cat.Name), nil
	}
	return fmt.Sprintf("Category saved: %s (%s)", cat.Alias, cat.Name), nil
}

// dialogRenameAlias consumes the alias answer of a /uc dialogue. Unknown
// aliases re-send the list and keep the question open.
func (b *Bot) dialogRenameAlias(ctx context.Context, chatID int64, answer string) (string, error) {
	alias := core.NormalizeAlias(answer)
	if err := core.ValidateAlias(alias); err != nil {
		b.dialogs.set(chatID, dialogState{step: stepRenameAlias})
		return "Send one alias from /lc.", nil
	}
	cat, err := b.registry.Find(ctx, chatID, alias)
	if errors.Is(err, core.ErrNotFound) {
		cats, lerr := b.registry.List(ctx, chatID)
		if lerr != nil {
			return "", lerr
		}
		if len(cats) == 0 {
			b.dialogs.clear(chatID)
			return "No categories yet. Create one with /nc <alias> <name>.", nil
		}
		b.dialogs.set(chatID, dialogState{step: stepRenameAlias})
		return formatCategories(cats) + "\n\nPick an alias from the list.", nil
	}
	if err != nil {
		return "", err
	}
	b.dialogs.set(chatID, dialogState{step: stepRenameName, alias: cat.Alias})
	return fmt.Sprintf("What is the new name for %q?", cat.Alias), nil
}

func (b *Bot) dialogRenameName(ctx context.Context, chatID int64, alias, answer string) (string, error) {
	name := strings.TrimSpace(answer)
	if err := core.ValidateName(name); err != nil {
		return "Names can be up to 200 characters. Try another.", nil
	}
	cat, err := b.registry.Rename(ctx, chatID, alias, name)
	if errors.Is(err, core.ErrNotFound) {
		b.dialogs.clear(chatID)
		return fmt.Sprintf("Unknown category %q. See /lc for the list.", alias), err
	}
	if err != nil {
		return "", err
	}
	b.dialogs.clear(chatID)
	return fmt.Sprintf("Category updated: %s (%s)", cat.Alias, cat.Name), nil
}

// dialogCostAlias consumes the alias answer after a bare amount was sent.
func (b *Bot) dialogCostAlias(ctx context.Context, chatID int64, amountCents int64, answer string) (string, error) {
	alias := core.NormalizeAlias(answer)
	if err := core.ValidateAlias(alias); err != nil {
		return "Send one category alias, or /lc for the list.", nil
	}
	cat, err := b.registry.Find(ctx, chatID, alias)
	if errors.Is(err, core.ErrNotFound) {
		cats, lerr := b.registry.List(ctx, chatID)
		if lerr != nil {
			return "", lerr
		}
		if len(cats) == 0 {
			b.dialogs.clear(chatID)
			return "No categories yet. Create one with /nc <alias> <name>.", nil
		}
		return formatCategories(cats) + "\n\nPick an alias from the list.", nil
	}
	if err != nil {
		return "", err
	}
	entry, err := b.ledger.Record(ctx, chatID, cat.ID, b.now().Unix(), amountCents)
	if err != nil {
		return "", err
	}
	b.dialogs.clear(chatID)
	return fmt.Sprintf("Added %s to %s.", core.FormatCents(entry.AmountCents), cat.Alias), nil
}

// dialogCostAmount consumes the amount answer after a bare alias was sent.
func (b *Bot) dialogCostAmount(ctx context.Context, chatID int64, st dialogState, answer string) (string, error) {
	cents, err := core.ParseAmountCents(answer)
	if err != nil {
		return "Amounts look like 12.50 (no sign, at most two decimals).", nil
	}
	entry, err := b.ledger.Record(ctx, chatID, st.categoryID, b.now().Unix(), cents)
	if err != nil {
		return "", err
	}
	b.dialogs.clear(chatID)
	return fmt.Sprintf("Added %s to %s.", core.FormatCents(entry.AmountCents), st.alias), nil
}
