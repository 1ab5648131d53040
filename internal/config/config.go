// Package config provides application configuration structures and helpers.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/and161185/monitoring-bot/model"
	"go.uber.org/zap"
)

const defaultConfigFile = "config.json"

// BotConfig holds the configuration settings for the bot.
type BotConfig struct {
	Addr            string // HTTP server address
	Logger          *zap.SugaredLogger
	LogFile         string                   // Extra log output besides stdout
	BotToken        string                   // Telegram Bot API token
	PrometheusURL   string                   // Prometheus base URL, e.g. http://localhost:9090
	AdminChatID     model.ChatID             // Reserved administrative chat
	TelegramAPIURL  string                   // Bot API base URL
	SubscribersPath string                   // Path to the subscribers JSON file
	DatabaseDsn     string                   // Data Source Name for PostgreSQL
	RedisAddr       string                   // Redis address, host:port
	RedisPassword   string                   // Redis password
	RedisDB         int                      // Redis database number
	SendTimeout     time.Duration            // Timeout of one sendMessage call
	QueryTimeout    time.Duration            // Timeout of one Prometheus query
	Metrics         []model.MetricDefinition // Metrics reported by /status
}

func defaults() *BotConfig {
	return &BotConfig{
		Addr:            ":5000",
		TelegramAPIURL:  "https://api.telegram.org",
		SubscribersPath: "./subscribers.json",
		SendTimeout:     5 * time.Second,
		QueryTimeout:    10 * time.Second,
		Metrics:         model.DefaultMetrics(),
	}
}

// NewBotConfig creates and returns a new BotConfig by parsing flags, the config file and environment variables.
func NewBotConfig() *BotConfig {
	// 0) defaults
	cfg := defaults()

	// 1) flags
	var fAddr, fToken, fProm, fAPI, fFile, fDSN, fRedis, fLog, fConf strFlag
	var fAdmin int64Flag
	var fSendTO, fQueryTO durationFlag

	flag.Var(&fAddr, "a", "HTTP server address")
	flag.Var(&fToken, "t", "Telegram bot token")
	flag.Var(&fProm, "p", "Prometheus base URL")
	flag.Var(&fAdmin, "admin", "admin chat id")
	flag.Var(&fAPI, "api", "Telegram Bot API URL")
	flag.Var(&fFile, "f", "path to subscribers file")
	flag.Var(&fDSN, "d", "DB connection string")
	flag.Var(&fRedis, "redis", "Redis address")
	flag.Var(&fSendTO, "send-timeout", "sendMessage timeout")
	flag.Var(&fQueryTO, "query-timeout", "Prometheus query timeout")
	flag.Var(&fLog, "log-file", "additional log file")
	flag.Var(&fConf, "c", "Path to JSON or YAML config file")
	flag.Var(&fConf, "config", "Path to JSON or YAML config file (alias)")
	flag.Parse()

	// 2) config file (lowest priority after defaults)
	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		} else if _, err := os.Stat(defaultConfigFile); err == nil {
			fConf.v = defaultConfigFile
		}
	}
	if fConf.v != "" {
		fc, err := loadFileConfig(fConf.v)
		if err != nil {
			log.Printf("failed to load config file: %v", err)
		} else {
			applyFileConfig(cfg, fc)
		}
	}

	// 3) flags override the file
	if fAddr.set {
		cfg.Addr = fAddr.v
	}
	if fToken.set {
		cfg.BotToken = fToken.v
	}
	if fProm.set {
		cfg.PrometheusURL = fProm.v
	}
	if fAdmin.set {
		cfg.AdminChatID = model.ChatID(fAdmin.v)
	}
	if fAPI.set {
		cfg.TelegramAPIURL = fAPI.v
	}
	if fFile.set {
		cfg.SubscribersPath = fFile.v
	}
	if fDSN.set {
		cfg.DatabaseDsn = fDSN.v
	}
	if fRedis.set {
		cfg.RedisAddr = fRedis.v
	}
	if fSendTO.set {
		cfg.SendTimeout = fSendTO.v
	}
	if fQueryTO.set {
		cfg.QueryTimeout = fQueryTO.v
	}
	if fLog.set {
		cfg.LogFile = fLog.v
	}

	// 4) environment wins
	readBotEnvironment(cfg)

	cfg.Logger = newLogger(cfg.LogFile)
	return cfg
}

func newLogger(logFile string) *zap.SugaredLogger {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		logCfg.OutputPaths = append(logCfg.OutputPaths, logFile)
	}
	return zap.Must(logCfg.Build()).Sugar()
}

func applyFileConfig(cfg *BotConfig, fc *fileConfig) {
	if fc.BotToken != nil {
		cfg.BotToken = *fc.BotToken
	}
	if fc.PrometheusURL != nil {
		cfg.PrometheusURL = *fc.PrometheusURL
	}
	if fc.AdminChatID != nil {
		cfg.AdminChatID = model.ChatID(*fc.AdminChatID)
	}
	if fc.Address != nil {
		cfg.Addr = *fc.Address
	}
	if fc.TelegramAPIURL != nil {
		cfg.TelegramAPIURL = *fc.TelegramAPIURL
	}
	if fc.SubscribersFile != nil {
		cfg.SubscribersPath = *fc.SubscribersFile
	}
	if fc.DatabaseDSN != nil {
		cfg.DatabaseDsn = *fc.DatabaseDSN
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.SendTimeout != nil {
		if d, err := time.ParseDuration(*fc.SendTimeout); err == nil {
			cfg.SendTimeout = d
		}
	}
	if fc.QueryTimeout != nil {
		if d, err := time.ParseDuration(*fc.QueryTimeout); err == nil {
			cfg.QueryTimeout = d
		}
	}
	if len(fc.Metrics) > 0 {
		cfg.Metrics = fc.Metrics
	}
}

func readBotEnvironment(cfg *BotConfig) {
	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Addr = addr
	}

	if token := os.Getenv("BOT_TOKEN"); token != "" {
		cfg.BotToken = token
	}

	if prom := os.Getenv("PROMETHEUS_URL"); prom != "" {
		cfg.PrometheusURL = prom
	}

	if adminEnv := os.Getenv("ADMIN_CHAT_ID"); adminEnv != "" {
		v, err := strconv.ParseInt(adminEnv, 10, 64)
		if err == nil {
			cfg.AdminChatID = model.ChatID(v)
		} else {
			log.Printf("invalid ADMIN_CHAT_ID env var: %v", err)
		}
	}

	if api := os.Getenv("TELEGRAM_API_URL"); api != "" {
		cfg.TelegramAPIURL = api
	}

	if path := os.Getenv("SUBSCRIBERS_FILE"); path != "" {
		cfg.SubscribersPath = path
	}

	if dbDsn := os.Getenv("DATABASE_DSN"); dbDsn != "" {
		cfg.DatabaseDsn = dbDsn
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		v, err := strconv.Atoi(redisDB)
		if err == nil {
			cfg.RedisDB = v
		} else {
			log.Printf("invalid REDIS_DB env var: %v", err)
		}
	}

	if sendTimeout := os.Getenv("SEND_TIMEOUT"); sendTimeout != "" {
		d, err := time.ParseDuration(sendTimeout)
		if err == nil {
			cfg.SendTimeout = d
		} else {
			log.Printf("invalid SEND_TIMEOUT env var: %v", err)
		}
	}

	if queryTimeout := os.Getenv("QUERY_TIMEOUT"); queryTimeout != "" {
		d, err := time.ParseDuration(queryTimeout)
		if err == nil {
			cfg.QueryTimeout = d
		} else {
			log.Printf("invalid QUERY_TIMEOUT env var: %v", err)
		}
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
}

var (
	ErrNoBotToken      = errors.New("bot token is required")
	ErrNoPrometheusURL = errors.New("prometheus URL is required")
	ErrNoAdminChatID   = errors.New("admin chat id is required")
)

// Validate checks the values that have to be supplied before startup.
func (cfg *BotConfig) Validate() error {
	var errs []error

	if cfg.BotToken == "" {
		errs = append(errs, ErrNoBotToken)
	}
	if cfg.PrometheusURL == "" {
		errs = append(errs, ErrNoPrometheusURL)
	} else if u, err := url.Parse(cfg.PrometheusURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid prometheus URL %q", cfg.PrometheusURL))
	}
	if cfg.AdminChatID == 0 {
		errs = append(errs, ErrNoAdminChatID)
	}
	if cfg.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("send timeout must be positive, got %s", cfg.SendTimeout))
	}
	if cfg.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query timeout must be positive, got %s", cfg.QueryTimeout))
	}
	if len(cfg.Metrics) == 0 {
		errs = append(errs, errors.New("at least one metric is required"))
	}
	for i, m := range cfg.Metrics {
		if m.Name == "" || m.Query == "" {
			errs = append(errs, fmt.Errorf("metric #%d: name and query are required", i))
		}
	}

	return errors.Join(errs...)
}
