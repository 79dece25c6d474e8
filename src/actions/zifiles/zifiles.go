// Package zifiles is the document editor bot: an uploaded .docx or .txt is
// rewritten by the brain and returned with an HTML change report.
package zifiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/persona"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/documents"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/telegram"
)

const (
	Name       = "zi_files"
	stepChoice = "waiting_choice"
	ModeClean  = "mode_clean"
	ModeKeep   = "mode_keep"
	reportName = "report.html"
)

const uploadTimeout = 30 * time.Second

// Uploader publishes a report page and returns its public URL.
type Uploader interface {
	HTML(ctx context.Context, page string) (string, error)
}

type mode struct {
	role  string
	label string
}

var modes = map[string]mode{
	ModeClean: {role: "dlp_clean", label: "🛡 DLP"},
	ModeKeep:  {role: "style_keep", label: "✍️ Редактор"},
}

// Bot handles the document chat.
type Bot struct {
	brain    brain.Completer
	prompts  persona.Resolver
	uploader Uploader
	limits   config.Files
}

// New builds the bot. A nil uploader always falls back to sending the report
// as a file.
func New(b brain.Completer, prompts persona.Resolver, uploader Uploader, limits config.Files) *Bot {
	return &Bot{brain: b, prompts: prompts, uploader: uploader, limits: limits}
}

func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.start)
	r.Handle("document", bot.Document(), b.document)
	r.Handle("mode", bot.CallbackPrefix("mode_"), b.process)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("hint", bot.AnyText(), b.start)
}

func (b *Bot) start(c *bot.Context) error {
	c.Reply("👋 *Привет! Я ZiFiles.*\nПришли .docx/.pdf/.txt\nЯ исправлю текст и дам *ссылку на визуальное сравнение*.", nil)
	return nil
}

func (b *Bot) document(c *bot.Context) error {
	doc := c.Message.Document
	if !documents.IsAccepted(doc.FileName) {
		c.Reply("⚠️ Только "+strings.Join(documents.Accepted, ", "), nil)
		return nil
	}

	st := fsm.State{Step: stepChoice}.With("file_id", doc.FileID).With("file_name", doc.FileName)
	if err := c.SetState(st); err != nil {
		return fmt.Errorf("save file choice: %w", err)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛡 Обезличить", ModeClean),
		tgbotapi.NewInlineKeyboardButtonData("✍️ Только стиль", ModeKeep),
	))
	c.Reply("📄 *"+doc.FileName+"*. Выбери режим:", kb)
	return nil
}

// process runs the chosen mode on the pending file.
func (b *Bot) process(c *bot.Context) error {
	c.AnswerCallback("")
	if c.State.Step != stepChoice {
		c.Reply("Файл не найден. Пришли документ ещё раз.", nil)
		return nil
	}
	m, ok := modes[c.Callback.Data]
	if !ok {
		m = modes[ModeKeep]
	}
	fileID, name := c.State.Data["file_id"], c.State.Data["file_name"]
	defer func() {
		if err := c.ClearState(); err != nil {
			c.Logf("clear file state: %v", err)
		}
	}()

	status := telegram.AttachStatus(c.API, c.ChatID, c.Message.MessageID)
	_ = status.Update(m.label + ": Обрабатываю и генерирую ссылку...")
	fail := func(text string) error {
		_ = status.Update("❌ " + text)
		return nil
	}

	raw, err := telegram.Download(c.Ctx, c.API, c.HTTP, fileID, b.limits.MaxBytes)
	if err != nil {
		c.Logf("download %s: %v", name, err)
		return fail("Не удалось скачать файл.")
	}
	text, err := documents.Extract(name, raw)
	switch {
	case errors.Is(err, documents.ErrUnsupported):
		return fail("Этот формат пока не читается. Пришли .docx или .txt.")
	case err != nil:
		c.Logf("extract %s: %v", name, err)
		return fail("Не удалось прочитать файл.")
	}
	original := documents.Truncate(text, b.limits.MaxChars)
	if strings.TrimSpace(original) == "" {
		return fail("В файле нет текста.")
	}

	res := b.brain.Complete(c.Ctx, b.prompts.Resolve(m.role), original, "")
	if res.Source == brain.Dead {
		return fail(res.Content)
	}
	c.Send("✅ *Результат:*", res.Content, res.Footer(), nil)

	page, _ := documents.DiffReport(name, original, res.Content)
	b.deliverReport(c, page)
	return nil
}

func (b *Bot) deliverReport(c *bot.Context, page string) {
	if b.uploader != nil {
		ctx, cancel := context.WithTimeout(c.Ctx, uploadTimeout)
		url, err := b.uploader.HTML(ctx, page)
		cancel()
		if err == nil {
			c.Reply("📊 *Подробный отчёт изменений:*\n🔗 [Открыть в браузере]("+url+")\n\n_⚠️ Ссылка активна 24 часа._", nil)
			return
		}
		c.Logf("report upload: %v", err)
	}
	if err := telegram.SendDocument(c.API, c.ChatID, reportName, []byte(page), "⚠️ Не удалось загрузить на сайт, держи файлом."); err != nil {
		c.Logf("report document: %v", err)
	}
}
