package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"Gin_postgres_redis_library/lending"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts the message to a chat through the Bot API sendMessage method.
type Telegram struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

type TelegramOption func(*Telegram)

// WithTelegramBaseURL points the client at another API host (tests, proxies).
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *Telegram) { t.baseURL = u }
}

func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) { t.client = c }
}

func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) LoanCreated(ctx context.Context, ev lending.LoanCreated) error {
	if t.token == "" || t.chatID == "" {
		return fmt.Errorf("telegram: bot token and chat id are required")
	}
	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    FormatLoanCreated(ev),
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var reply telegramReply
	_ = json.Unmarshal(raw, &reply)
	if resp.StatusCode != http.StatusOK || !reply.OK {
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, reply.Description)
	}
	return nil
}
