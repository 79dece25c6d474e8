// Package telegram delivers bot replies: chunking, renderer fallback,
// progress status messages and file transfer.
package telegram

import (
	"errors"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/logging"
)

const maxRetryAfter = 10 * time.Second

// Sender is the subset of *tgbotapi.BotAPI used for output.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Reply is one logical answer. Keyboard, when set, goes on the last
// non-blank chunk.
type Reply struct {
	ChatID   int64
	Header   string
	Body     string
	Footer   string
	Keyboard any
}

// Attempt is the outcome of delivering one chunk with one renderer.
type Attempt struct {
	Renderer string
	Message  tgbotapi.Message
	Err      error
}

// OK reports whether Telegram accepted the chunk.
func (a Attempt) OK() bool { return a.Err == nil }

// Report summarises a Send.
type Report struct {
	Chunks    int
	Delivered int
	Modes     []string
	Messages  []tgbotapi.Message
	LastErr   error
}

// Send composes, chunks and delivers a reply. It never panics; failures are
// in the report.
func Send(s Sender, r Reply) (rep Report) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("telegram: send panic: %v", p)
			rep.LastErr = errors.New("telegram: send panicked")
		}
	}()

	chunks := Chunk(Compose(r.Header, r.Body, r.Footer), MaxMessageLen)
	rep.Chunks = len(chunks)
	last := len(chunks) - 1
	for last > 0 && blank(chunks[last]) {
		last--
	}
	for i, chunk := range chunks {
		if blank(chunk) {
			continue
		}
		var kb any
		if i == last {
			kb = r.Keyboard
		}
		a := deliver(s, r.ChatID, chunk, kb)
		rep.Modes = append(rep.Modes, a.Renderer)
		if !a.OK() {
			rep.LastErr = a.Err
			log.Printf("telegram: chat %d chunk %d/%d undeliverable: %v", r.ChatID, i+1, len(chunks), a.Err)
			continue
		}
		rep.Delivered++
		rep.Messages = append(rep.Messages, a.Message)
	}
	return rep
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// SendText sends a short service message without header or footer.
func SendText(s Sender, chatID int64, text string, keyboard any) Report {
	return Send(s, Reply{ChatID: chatID, Body: text, Keyboard: keyboard})
}

func deliver(s Sender, chatID int64, chunk string, keyboard any) Attempt {
	var last Attempt
	for _, r := range Renderers {
		last = try(s, r, chatID, chunk, keyboard)
		if last.OK() {
			return last
		}
		if !logging.IsMarkupRejected(last.Err) {
			log.Printf("telegram: %s attempt failed: %v", r.Name, last.Err)
		}
	}
	return last
}

func try(s Sender, r Renderer, chatID int64, chunk string, keyboard any) Attempt {
	msg := tgbotapi.NewMessage(chatID, r.Render(chunk))
	msg.ParseMode = r.ParseMode
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}

	sent, err := s.Send(msg)
	if err != nil && logging.IsRateLimit(err) {
		time.Sleep(retryAfter(err))
		sent, err = s.Send(msg)
	}
	return Attempt{Renderer: r.Name, Message: sent, Err: err}
}

func retryAfter(err error) time.Duration {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		d := time.Duration(tgErr.RetryAfter) * time.Second
		if d > maxRetryAfter {
			return maxRetryAfter
		}
		return d
	}
	return time.Second
}
