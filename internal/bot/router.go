// Package bot dispatches chat commands received by the webhook.
package bot

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Reporter,Sender,Subscriptions

import (
	"context"
	"strings"

	"github.com/and161185/monitoring-bot/model"
	"go.uber.org/zap"
)

// Recognized commands. Matching is by prefix, so "/status_now" is a status request.
const (
	CommandStatus = "/status"
	CommandStart  = "/start"
	CommandStop   = "/stop"
)

const (
	TextSubscribed   = "Подписка активирована."
	TextUnsubscribed = "Подписка отменена."
	TextHelp         = "Доступные команды: " + CommandStatus + ", " + CommandStart + ", " + CommandStop
)

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID model.ChatID, text string) error
}

// Reporter produces the status report text.
type Reporter interface {
	Text(ctx context.Context) string
}

// Subscriptions changes the subscriber list.
type Subscriptions interface {
	Subscribe(ctx context.Context, id model.ChatID) (bool, error)
	Unsubscribe(ctx context.Context, id model.ChatID) (bool, error)
}

type Router struct {
	sender   Sender
	reporter Reporter
	subs     Subscriptions
	logger   *zap.SugaredLogger
}

func NewRouter(sender Sender, reporter Reporter, subs Subscriptions, logger *zap.SugaredLogger) *Router {
	return &Router{sender: sender, reporter: reporter, subs: subs, logger: logger}
}

// Handle runs the command in text for chatID. It never fails: store and
// delivery errors are logged and the request is considered handled.
func (rt *Router) Handle(ctx context.Context, chatID model.ChatID, text string) {
	switch {
	case strings.HasPrefix(text, CommandStatus):
		rt.send(ctx, chatID, rt.reporter.Text(ctx))

	case strings.HasPrefix(text, CommandStart):
		added, err := rt.subs.Subscribe(ctx, chatID)
		if err != nil {
			rt.logger.Errorw("failed to subscribe", "chat_id", chatID, "error", err)
		} else if added {
			rt.logger.Infow("chat subscribed", "chat_id", chatID)
		}
		rt.send(ctx, chatID, TextSubscribed)

	case strings.HasPrefix(text, CommandStop):
		removed, err := rt.subs.Unsubscribe(ctx, chatID)
		if err != nil {
			rt.logger.Errorw("failed to unsubscribe", "chat_id", chatID, "error", err)
		} else if removed {
			rt.logger.Infow("chat unsubscribed", "chat_id", chatID)
		}
		rt.send(ctx, chatID, TextUnsubscribed)

	default:
		rt.send(ctx, chatID, TextHelp)
	}
}

func (rt *Router) send(ctx context.Context, chatID model.ChatID, text string) {
	if err := rt.sender.SendMessage(ctx, chatID, text); err != nil {
		rt.logger.Warnw("failed to send message", "chat_id", chatID, "error", err)
	}
}
