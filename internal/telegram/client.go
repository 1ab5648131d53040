// Package telegram sends messages through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/and161185/monitoring-bot/model"
)

const (
	DefaultAPIURL  = "https://api.telegram.org"
	DefaultTimeout = 5 * time.Second
)

var ErrEmptyToken = errors.New("telegram bot token is empty")

// Client sends text messages on behalf of one bot.
type Client struct {
	bot   *tgbotapi.BotAPI
	token string
}

// NewClient authorizes the bot with getMe, so a wrong token or API URL fails at startup.
func NewClient(apiURL, token string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientWithHTTP(apiURL, token, &http.Client{Timeout: timeout})
}

// DI: ready http.Client
func NewClientWithHTTP(apiURL, token string, hc tgbotapi.HTTPClient) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint(apiURL), hc)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", redactToken(err, token))
	}
	return &Client{bot: bot, token: token}, nil
}

// endpoint builds the Bot API format string: <api>/bot<token>/<method>.
func endpoint(apiURL string) string {
	return strings.TrimRight(apiURL, "/") + "/bot%s/%s"
}

// Username is the bot's @username as reported by getMe.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// SendMessage posts text to chatID with Markdown parse mode. A single attempt is
// made; the call is bounded by the HTTP client timeout.
func (c *Client) SendMessage(ctx context.Context, chatID model.ChatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(int64(chatID), text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", redactToken(err, c.token))
	}
	return nil
}

// redactToken hides the bot token that *url.Error embeds in its message.
func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
