package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"centesimi/internal/log"
	"centesimi/internal/services"
)

// sender is the slice of the bot API the handlers need. *bot.Bot satisfies
// it; tests plug in a recorder.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Bot is the chat front end of the ledger. Each Telegram chat is one
// conversation: the chat id scopes every category and entry.
type Bot struct {
	api        *bot.Bot
	sender     sender
	logger     *log.Logger
	registry   *services.RegistryService
	ledger     *services.LedgerService
	aggregator *services.AggregatorService
	limiter    *chatLimiter
	dialogs    *dialogManager
	timeout    time.Duration
	now        func() time.Time
}

type Config struct {
	Token          string
	CommandTimeout time.Duration
	RatePerMinute  int
	Debug          bool
}

// New creates a Telegram bot instance wired to the ledger services.
func New(cfg Config, registry *services.RegistryService, ledger *services.LedgerService, aggregator *services.AggregatorService, logger *log.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 20
	}

	b := &Bot{
		logger:     logger,
		registry:   registry,
		ledger:     ledger,
		aggregator: aggregator,
		limiter:    newChatLimiter(cfg.RatePerMinute),
		dialogs:    newDialogManager(),
		timeout:    cfg.CommandTimeout,
		now:        time.Now,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.command("text", b.cmdFreeText)),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.api = api
	b.sender = api
	b.registerHandlers()

	return b, nil
}

// Start runs long polling until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.InfoContext(ctx, "Telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

func (b *Bot) registerHandlers() {
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.command("start", b.cmdHelp))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, b.command("help", b.cmdHelp))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/lc", bot.MatchTypeExact, b.command("lc", b.cmdListCategories))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/nc", bot.MatchTypePrefix, b.command("nc", b.cmdNewCategory))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/uc", bot.MatchTypePrefix, b.command("uc", b.cmdUpdateCategory))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/cost", bot.MatchTypePrefix, b.command("cost", b.cmdCost))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/rm", bot.MatchTypeExact, b.command("rm", b.cmdRemoveLast))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/stm", bot.MatchTypeExact, b.command("stm", b.cmdStatMonth))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/sp", bot.MatchTypePrefix, b.command("sp", b.cmdStatPeriod))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	_, err := b.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to send message", "chat_id", chatID, "error", err)
	}
}
