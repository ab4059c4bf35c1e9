package app

import (
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_library/config"
	"Gin_postgres_redis_library/notify"

	"github.com/spf13/viper"
)

// Config is read from the environment (and .env) through viper.
type Config struct {
	Port     string
	LogLevel string
	AppName  string

	Store           string // postgres | memory
	DatabaseURL     string
	AutoMigrate     bool
	LockTimeout     time.Duration
	LoanMaxAttempts int

	RedisAddr    string
	RedisPwd     string
	WebOrigin    string
	SessionTTL   time.Duration
	SeenThrottle time.Duration

	AdminEmails    []string
	BootstrapAdmin string

	NotifyChannel      string // log | redis | telegram | smtp, comma separated
	NotifyRatePerSec   float64
	NotifyQueueSize    int
	NotifyRedisChannel string
	TelegramToken      string
	TelegramChatID     string
	SMTP               notify.SMTPConfig
}

func LoadConfig(v *viper.Viper) Config {
	dsn := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			v.GetString("DB_HOST"), v.GetString("DB_USER"), v.GetString("DB_PASSWORD"),
			v.GetString("DB_NAME"), v.GetString("DB_PORT"), v.GetString("DB_SSLMODE"))
	}

	ttl := time.Duration(v.GetInt("SESSION_TTL_SECONDS")) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	autoMigrate := true
	if v.IsSet("AUTO_MIGRATE") {
		autoMigrate = v.GetBool("AUTO_MIGRATE")
	}

	appName := v.GetString("APP_NAME")
	return Config{
		Port:     v.GetString("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		AppName:  appName,

		Store:           strings.ToLower(v.GetString("STORE")),
		DatabaseURL:     dsn,
		AutoMigrate:     autoMigrate,
		LockTimeout:     v.GetDuration("LOCK_TIMEOUT"),
		LoanMaxAttempts: v.GetInt("LOAN_MAX_ATTEMPTS"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisPwd:     v.GetString("REDIS_PASSWORD"),
		WebOrigin:    v.GetString("WEB_ORIGIN"),
		SessionTTL:   ttl,
		SeenThrottle: v.GetDuration("SEEN_THROTTLE"),

		AdminEmails:    config.SplitList(v.GetString("ADMIN_EMAILS"), true), // e.g. "admin@ex.com,ops@ex.com"
		BootstrapAdmin: strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN")),

		NotifyChannel:      strings.ToLower(v.GetString("NOTIFY_CHANNEL")),
		NotifyRatePerSec:   v.GetFloat64("NOTIFY_RATE_PER_SEC"),
		NotifyQueueSize:    v.GetInt("NOTIFY_QUEUE_SIZE"),
		NotifyRedisChannel: v.GetString("NOTIFY_REDIS_CHANNEL"),
		TelegramToken:      v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     v.GetString("TELEGRAM_CHAT_ID"),
		SMTP: notify.SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			To:       config.SplitList(v.GetString("SMTP_TO"), false),
			AppName:  appName,
		},
	}
}

// IsAdminName reports whether username is on the ADMIN_EMAILS list.
func (c Config) IsAdminName(username string) bool {
	name := strings.ToLower(strings.TrimSpace(username))
	for _, admin := range c.AdminEmails {
		if name == admin {
			return true
		}
	}
	return false
}
