package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_library/lending"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() lending.LoanCreated {
	return lending.LoanCreated{
		LoanID:             7,
		BorrowerID:         "6f1c2a8e-0000-4000-8000-000000000001",
		BorrowerName:       "alice@example.com",
		BookTitle:          "Dune",
		ExpectedReturnDate: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatLoanCreated(t *testing.T) {
	got := FormatLoanCreated(sampleEvent())
	assert.Equal(t, "New Borrowing Created:\nUser: alice@example.com\nBook: Dune\nExpected Return Date: 2025-03-17", got)

	ev := sampleEvent()
	ev.BorrowerName = ""
	assert.Contains(t, FormatLoanCreated(ev), "User: "+ev.BorrowerID)
}

func TestTelegram_SendsMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "42", WithTelegramBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, tg.LoanCreated(context.Background(), sampleEvent()))

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Contains(t, gotBody["text"], "Book: Dune")
}

func TestTelegram_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "42", WithTelegramBaseURL(srv.URL))
	err := tg.LoanCreated(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegram_RequiresCredentials(t *testing.T) {
	assert.Error(t, NewTelegram("", "42").LoanCreated(context.Background(), sampleEvent()))
	assert.Error(t, NewTelegram("TOKEN", "").LoanCreated(context.Background(), sampleEvent()))
}

func TestMailer_BuildsMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	m := NewMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Username: "bot@example.com",
		To:       []string{"staff@example.com", "desk@example.com"},
		AppName:  "Library",
	})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	require.NoError(t, m.LoanCreated(context.Background(), sampleEvent()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"staff@example.com", "desk@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "From: Library <bot@example.com>")
	assert.Contains(t, gotMsg, "Subject: Library: new borrowing of Dune")
	assert.Contains(t, gotMsg, "Book: Dune\r\n")
}

func TestMailer_RequiresRecipients(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, m.LoanCreated(context.Background(), sampleEvent()))
}

type recorder struct {
	mu   sync.Mutex
	evs  []lending.LoanCreated
	err  error
	gate chan struct{}
}

func (r *recorder) LoanCreated(_ context.Context, ev lending.LoanCreated) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evs)
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("down")}
	err := Multi{ok, bad}.LoanCreated(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, bad.count())

	assert.NoError(t, Multi{ok}.LoanCreated(context.Background(), sampleEvent()))
}

func TestAsync_DeliversQueuedEventsOnClose(t *testing.T) {
	next := &recorder{}
	a := NewAsync(next, 8, 0, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.LoanCreated(context.Background(), sampleEvent()))
	}
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 5, next.count())

	assert.ErrorIs(t, a.LoanCreated(context.Background(), sampleEvent()), ErrClosed)
	assert.NoError(t, a.Close(context.Background()))
}

func TestAsync_DropsWhenQueueFull(t *testing.T) {
	next := &recorder{gate: make(chan struct{})}
	a := NewAsync(next, 1, 0, nil)

	// the worker may or may not have pulled the first event yet; either way
	// at most two events fit (one in flight, one queued)
	var full int
	for i := 0; i < 4; i++ {
		if errors.Is(a.LoanCreated(context.Background(), sampleEvent()), ErrQueueFull) {
			full++
		}
	}
	assert.GreaterOrEqual(t, full, 2)

	close(next.gate)
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 4-full, next.count())
}

func TestAsync_DeliveryErrorsAreSwallowed(t *testing.T) {
	next := &recorder{err: errors.New("smtp down")}
	a := NewAsync(next, 4, 0, nil)
	require.NoError(t, a.LoanCreated(context.Background(), sampleEvent()))
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 1, next.count())
}

func TestLog_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, n.LoanCreated(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), "loan_id=7")
	assert.Contains(t, buf.String(), "book=Dune")
}

type panicky struct{ calls int }

func (p *panicky) LoanCreated(context.Context, lending.LoanCreated) error {
	p.calls++
	if p.calls == 1 {
		panic("channel exploded")
	}
	return nil
}

func TestAsync_SurvivesPanickingChannel(t *testing.T) {
	next := &panicky{}
	a := NewAsync(next, 4, 0, nil)
	require.NoError(t, a.LoanCreated(context.Background(), sampleEvent()))
	require.NoError(t, a.LoanCreated(context.Background(), sampleEvent()))
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 2, next.calls)
}
