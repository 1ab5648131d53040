package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/and161185/monitoring-bot/model"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk configuration. The upper-case keys are the ones
// the bot has always read from config.json.
type fileConfig struct {
	BotToken        *string                  `json:"BOT_TOKEN" yaml:"BOT_TOKEN"`
	PrometheusURL   *string                  `json:"PROMETHEUS_URL" yaml:"PROMETHEUS_URL"`
	AdminChatID     *chatIDValue             `json:"ADMIN_CHAT_ID" yaml:"ADMIN_CHAT_ID"`
	Address         *string                  `json:"address" yaml:"address"`
	TelegramAPIURL  *string                  `json:"telegram_api_url" yaml:"telegram_api_url"`
	SubscribersFile *string                  `json:"subscribers_file" yaml:"subscribers_file"`
	DatabaseDSN     *string                  `json:"database_dsn" yaml:"database_dsn"`
	RedisAddr       *string                  `json:"redis_addr" yaml:"redis_addr"`
	SendTimeout     *string                  `json:"send_timeout" yaml:"send_timeout"`   // "5s"
	QueryTimeout    *string                  `json:"query_timeout" yaml:"query_timeout"` // "10s"
	Metrics         []model.MetricDefinition `json:"metrics" yaml:"metrics"`
}

// chatIDValue accepts both 123 and "123".
type chatIDValue model.ChatID

func (v *chatIDValue) set(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", s, err)
	}
	*v = chatIDValue(id)
	return nil
}

func (v *chatIDValue) UnmarshalJSON(b []byte) error {
	return (*model.ChatID)(v).UnmarshalJSON(b)
}

func (v *chatIDValue) UnmarshalYAML(node *yaml.Node) error {
	return v.set(node.Value)
}

func loadFileConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = json.Unmarshal(b, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}
