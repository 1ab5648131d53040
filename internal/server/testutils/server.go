// Package testutils builds servers for HTTP handler tests.
package testutils

import (
	"context"
	"sync"

	"github.com/and161185/monitoring-bot/internal/config"
	"github.com/and161185/monitoring-bot/internal/server"
	"github.com/and161185/monitoring-bot/model"
	"github.com/and161185/monitoring-bot/storage/inmemory"
	"go.uber.org/zap"
)

// Command is a call recorded by RecordingBot.
type Command struct {
	ChatID model.ChatID
	Text   string
}

// RecordingBot remembers every command it is asked to handle.
type RecordingBot struct {
	mu       sync.Mutex
	commands []Command
}

func (b *RecordingBot) Handle(_ context.Context, chatID model.ChatID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, Command{ChatID: chatID, Text: text})
}

func (b *RecordingBot) Commands() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Command(nil), b.commands...)
}

func NewTestServer(ctx context.Context) (*server.Server, *RecordingBot) {
	bot := &RecordingBot{}
	return server.NewServer(bot, inmemory.NewMemStorage(ctx), &config.BotConfig{
		Addr:   "127.0.0.1:0",
		Logger: zap.NewNop().Sugar(),
	}), bot
}
