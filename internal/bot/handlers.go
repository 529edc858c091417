package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	telebot "gopkg.in/telebot.v3"

	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
	"github.com/fitcoin-app/fitcoin/pkg/logger"
)

var (
	btnTrackStart = telebot.Btn{Unique: "track_start", Text: "Start tracking"}
	btnTrackStop  = telebot.Btn{Unique: "track_stop", Text: "Stop tracking"}
	btnBuy        = telebot.Btn{Unique: "shop_buy"}
)

const notLoggedInMessage = "No active session. Log in through the app first."

func (b *Bot) handleStart(c telebot.Context) error {
	if user := b.store.User(); user != nil {
		return c.Send(fmt.Sprintf("Welcome back, %s! Use /balance, /today, /track or /shop.", user.Username))
	}
	return c.Send("Welcome to FitCoin! Log in through the app, then use /balance, /today, /track or /shop here.")
}

func (b *Bot) handleBalance(c telebot.Context) error {
	if b.store.User() == nil {
		return c.Send(notLoggedInMessage)
	}

	coins := b.store.Coins()
	return c.Send(fmt.Sprintf(
		"Balance: %d FIT\nEarned: %d\nSpent: %d",
		coins.Balance, coins.TotalEarned, coins.TotalSpent,
	))
}

func (b *Bot) handleToday(c telebot.Context) error {
	if b.store.User() == nil {
		return c.Send(notLoggedInMessage)
	}

	stats := b.store.Today(time.Now())
	return c.Send(fmt.Sprintf(
		"Today: %d activities, %d kcal burned, %d FIT earned",
		len(stats.Activities), stats.Calories, stats.Coins,
	))
}

func (b *Bot) handleTrack(c telebot.Context) error {
	if b.store.User() == nil {
		return c.Send(notLoggedInMessage)
	}

	markup := &telebot.ReplyMarkup{}
	if b.store.IsTracking() {
		progress := b.tracker.Progress()
		markup.Inline(markup.Row(markup.Data(btnTrackStop.Text, btnTrackStop.Unique)))
		return c.Send(fmt.Sprintf(
			"Tracking for %ds: %d kcal, earning %d FIT",
			progress.ElapsedSeconds, progress.CaloriesBurned, progress.CoinsEarning,
		), markup)
	}

	markup.Inline(markup.Row(markup.Data(btnTrackStart.Text, btnTrackStart.Unique)))
	return c.Send("Ready to move?", markup)
}

func (b *Bot) handleTrackStart(c telebot.Context) error {
	ctx := b.requestContext()

	if err := b.tracker.Start(ctx, domain.ActivityWorkout); err != nil {
		return c.Send(b.userMessage(ctx, err))
	}

	return c.Send("Tracking started. Stop with /track when you are done.")
}

func (b *Bot) handleTrackStop(c telebot.Context) error {
	ctx := b.requestContext()

	record, err := b.tracker.Stop(ctx)
	if err != nil {
		return c.Send(b.userMessage(ctx, err))
	}

	if record == nil {
		return c.Send("Session stopped. Nothing burned, nothing earned.")
	}

	return c.Send(fmt.Sprintf(
		"Session complete! %d kcal burned, %d FIT earned. Balance: %d",
		record.CaloriesBurned, record.CoinsEarned, b.store.Coins().Balance,
	))
}

func (b *Bot) handleShop(c telebot.Context) error {
	if b.store.User() == nil {
		return c.Send(notLoggedInMessage)
	}

	ctx := b.requestContext()
	items, err := b.market.Items(ctx, "")
	if err != nil {
		return c.Send(b.userMessage(ctx, err))
	}

	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(items))
	for _, item := range items {
		label := fmt.Sprintf("%s (%d FIT)", item.Title, item.CoinCost)
		rows = append(rows, markup.Row(markup.Data(label, btnBuy.Unique, item.ID)))
	}
	markup.Inline(rows...)

	return c.Send(fmt.Sprintf("Marketplace (balance %d FIT):", b.store.Coins().Balance), markup)
}

func (b *Bot) handleBuy(c telebot.Context) error {
	itemID := callbackData(c)
	if itemID == "" {
		return c.Send("Unknown item.")
	}

	ctx := b.requestContext()
	item, err := b.market.Purchase(ctx, itemID)
	if err != nil {
		return c.Send(b.userMessage(ctx, err))
	}

	return c.Send(fmt.Sprintf(
		"Purchased %s for %d FIT. Balance: %d",
		item.Title, item.CoinCost, b.store.Coins().Balance,
	))
}

// requestContext tags bot-originated work with a correlation identifier so
// chat flows line up with the rest of the logs.
func (b *Bot) requestContext() context.Context {
	return logger.WithCorrelationID(context.Background(), uuid.NewString())
}

// userMessage funnels failures through the error handler so severe ones
// reach Sentry, and picks the reply to show in chat.
func (b *Bot) userMessage(ctx context.Context, err error) string {
	if errors.Is(err, tracker.ErrAlreadyTracking) || errors.Is(err, tracker.ErrNotTracking) {
		return err.Error()
	}

	msg, retryable := b.errHandler.Handle(ctx, err)
	if retryable {
		msg += " You can try again."
	}
	return msg
}

func callbackData(c telebot.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}

	data := strings.TrimPrefix(cb.Data, "\f"+btnBuy.Unique)
	return strings.TrimSpace(strings.TrimPrefix(data, "|"))
}
