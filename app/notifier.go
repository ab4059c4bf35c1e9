package app

import (
	"fmt"
	"log/slog"
	"strings"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/notify"

	"github.com/redis/go-redis/v9"
)

// buildNotifier assembles the channels named in NOTIFY_CHANNEL behind one rate-limited queue.
func buildNotifier(cfg Config, rdb *redis.Client, log *slog.Logger) (*notify.Async, error) {
	var channels notify.Multi
	for _, name := range strings.Split(cfg.NotifyChannel, ",") {
		switch strings.TrimSpace(name) {
		case "", "log":
			channels = append(channels, notify.NewLog(log))
		case "redis":
			channels = append(channels, notify.NewRedisPublisher(rdb, cfg.NotifyRedisChannel))
		case "telegram":
			if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
				return nil, fmt.Errorf("telegram notifications need TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
			}
			channels = append(channels, notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID))
		case "smtp":
			if cfg.SMTP.Host == "" || len(cfg.SMTP.To) == 0 {
				return nil, fmt.Errorf("smtp notifications need SMTP_HOST and SMTP_TO")
			}
			channels = append(channels, notify.NewMailer(cfg.SMTP))
		default:
			return nil, fmt.Errorf("unknown notify channel %q", name)
		}
	}

	var next lending.Notifier = channels
	if len(channels) == 1 {
		next = channels[0]
	}
	return notify.NewAsync(next, cfg.NotifyQueueSize, cfg.NotifyRatePerSec, log), nil
}
