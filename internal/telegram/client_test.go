package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

const getMeOK = `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Monitor","username":"monitor_bot"}}`

// fakeBotAPI answers getMe and hands sendMessage to the given handler.
type fakeBotAPI struct {
	token       string
	sendMessage http.HandlerFunc

	mu   sync.Mutex
	form []map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/bot" + f.token + "/getMe":
		_, _ = w.Write([]byte(getMeOK))
	case "/bot" + f.token + "/sendMessage":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.form = append(f.form, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		f.sendMessage(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func (f *fakeBotAPI) sent() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.form...)
}

func newFakeBotAPI(t *testing.T, token string, sendMessage http.HandlerFunc) (*fakeBotAPI, string) {
	t.Helper()
	f := &fakeBotAPI{token: token, sendMessage: sendMessage}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	return f, ts.URL
}

func TestSendMessage_OK(t *testing.T) {
	f, url := newFakeBotAPI(t, "TOKEN", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":111,"type":"private"}}}`))
	})

	c, err := NewClient(url+"/", "TOKEN", time.Second)
	require.NoError(t, err)
	require.Equal(t, "monitor_bot", c.Username())

	require.NoError(t, c.SendMessage(context.Background(), 111, "hello"))
	require.Equal(t, []map[string]string{{
		"chat_id":    "111",
		"text":       "hello",
		"parse_mode": tgbotapi.ModeMarkdown,
	}}, f.sent())
}

func TestSendMessage_APIError(t *testing.T) {
	_, url := newFakeBotAPI(t, "TOKEN", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	c, err := NewClient(url, "TOKEN", time.Second)
	require.NoError(t, err)

	err = c.SendMessage(context.Background(), 1, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}

func TestSendMessage_NonJSONError(t *testing.T) {
	_, url := newFakeBotAPI(t, "TOKEN", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	c, err := NewClient(url, "TOKEN", time.Second)
	require.NoError(t, err)
	require.Error(t, c.SendMessage(context.Background(), 1, "x"))
}

func TestSendMessage_Timeout(t *testing.T) {
	_, url := newFakeBotAPI(t, "TOKEN", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	c, err := NewClient(url, "TOKEN", 100*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	require.Error(t, c.SendMessage(context.Background(), 1, "x"))
	require.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestSendMessage_CancelledContext(t *testing.T) {
	f, url := newFakeBotAPI(t, "TOKEN", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	c, err := NewClient(url, "TOKEN", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.SendMessage(ctx, 1, "x"), context.Canceled)
	require.Empty(t, f.sent())
}

func TestNewClient_WrongToken(t *testing.T) {
	_, url := newFakeBotAPI(t, "TOKEN", nil)

	_, err := NewClient(url, "OTHER", time.Second)
	require.Error(t, err)
}

func TestNewClient_UnreachableRedactsToken(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	_, err := NewClient(addr, "SECRET123", 200*time.Millisecond)
	require.Error(t, err)
	require.NotContains(t, err.Error(), "SECRET123")
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := NewClient("", "", time.Second)
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestEndpoint(t *testing.T) {
	require.Equal(t, tgbotapi.APIEndpoint, endpoint(DefaultAPIURL))
	require.Equal(t, "http://tg.local/bot%s/%s", endpoint("http://tg.local/"))
}
