// Package server exposes the Telegram webhook and health endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/and161185/monitoring-bot/internal/config"
	"github.com/and161185/monitoring-bot/internal/server/middleware"
	"github.com/and161185/monitoring-bot/model"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	chiV5Middleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	WebhookPath  = "/telegram_webhook"
	IndexMessage = "Monitoring bot is running."
	shutdownWait = 10 * time.Second
)

// CommandHandler handles one chat command.
type CommandHandler interface {
	Handle(ctx context.Context, chatID model.ChatID, text string)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Bot     CommandHandler
	Storage Pinger
	Config  *config.BotConfig
}

func NewServer(bot CommandHandler, storage Pinger, config *config.BotConfig) *Server {
	return &Server{
		Bot:     bot,
		Storage: storage,
		Config:  config,
	}
}

// Router builds the HTTP routes.
func (srv *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chiV5Middleware.RequestID)
	router.Use(chiMiddleware.StripSlashes)
	router.Use(chiV5Middleware.Recoverer)
	router.Use(middleware.LogMiddleware(srv.Config.Logger))
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.CompressMiddleware)

	router.Post(WebhookPath, srv.WebhookHandler)
	router.Get("/ping", srv.PingHandler)
	router.Get("/", srv.IndexHandler)

	return router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              srv.Config.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.Config.Logger.Infow("listening", "addr", srv.Config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type webhookResponse struct {
	OK bool `json:"ok"`
}

// WebhookHandler processes one Telegram update. Telegram redelivers updates
// answered with non-2xx, so every update is acknowledged with 200, including
// the ones that had to be dropped.
func (srv *Server) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	defer writeAck(w, srv)

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		srv.Config.Logger.Warnw("dropping malformed update", "error", err)
		return
	}

	if update.Message == nil {
		srv.Config.Logger.Debugw("ignoring update without message", "update_id", update.UpdateID)
		return
	}
	// Telegram never assigns chat id 0, so zero means the id was missing.
	if update.Message.Chat == nil || update.Message.Chat.ID == 0 {
		srv.Config.Logger.Warnw("dropping update without chat id", "update_id", update.UpdateID)
		return
	}

	srv.Bot.Handle(r.Context(), model.ChatID(update.Message.Chat.ID), update.Message.Text)
}

func writeAck(w http.ResponseWriter, srv *Server) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(webhookResponse{OK: true}); err != nil {
		srv.Config.Logger.Errorw("failed to write response JSON", "error", err)
	}
}

func (srv *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(IndexMessage)); err != nil {
		srv.Config.Logger.Errorw("failed to write response body", "error", err)
	}
}

func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := srv.Storage.Ping(ctx); err != nil {
		srv.Config.Logger.Errorw("storage ping failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
