// Package bot is the Telegram companion surface. It mirrors the app
// screens over chat commands and never touches the ledger directly.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/market"
	"github.com/fitcoin-app/fitcoin/internal/session"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
	"github.com/fitcoin-app/fitcoin/pkg/config"
)

const (
	CommandStart   = "/start"
	CommandBalance = "/balance"
	CommandToday   = "/today"
	CommandTrack   = "/track"
	CommandShop    = "/shop"
)

// Bot wraps telebot.Bot with the session services it exposes.
type Bot struct {
	telebot    *telebot.Bot
	store      *session.Store
	tracker    *tracker.Tracker
	market     *market.Service
	errHandler *apperr.Handler
	log        *slog.Logger
}

// New builds the companion bot. Returns an error when the token is refused
// by the Telegram API.
func New(
	cfg config.TelegramConfig,
	store *session.Store,
	trk *tracker.Tracker,
	mkt *market.Service,
	errHandler *apperr.Handler,
	log *slog.Logger,
) (*Bot, error) {
	pollTimeout := 10 * time.Second
	if cfg.PollTimeout != "" {
		if d, err := time.ParseDuration(cfg.PollTimeout); err == nil && d > 0 {
			pollTimeout = d
		}
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:    tb,
		store:      store,
		tracker:    trk,
		market:     mkt,
		errHandler: errHandler,
		log:        log,
	}

	b.registerHandlers()

	return b, nil
}

// Start runs the bot event loop. Blocks until Stop is called.
func (b *Bot) Start() {
	b.telebot.Start()
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}

// Telebot exposes the underlying instance for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) registerHandlers() {
	b.telebot.Handle(CommandStart, b.handleStart)
	b.telebot.Handle(CommandBalance, b.handleBalance)
	b.telebot.Handle(CommandToday, b.handleToday)
	b.telebot.Handle(CommandTrack, b.handleTrack)
	b.telebot.Handle(CommandShop, b.handleShop)

	b.telebot.Handle(&btnTrackStart, b.handleTrackStart)
	b.telebot.Handle(&btnTrackStop, b.handleTrackStop)
	b.telebot.Handle(&btnBuy, b.handleBuy)
}
