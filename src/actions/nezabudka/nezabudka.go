// Package nezabudka is the AI secretary: free text becomes a task record,
// /list and /done manage the pending ones.
package nezabudka

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/persona"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/stats"
	"github.com/teambots/teambots/src/tasks"
	"github.com/teambots/teambots/src/telegram"
	"github.com/teambots/teambots/src/tracking"
)

const (
	Name            = "nezabudka"
	DecomposePrefix = "decomp_"
)

// Bot handles the secretary chat.
type Bot struct {
	brain   brain.Completer
	prompts persona.Resolver
	store   tasks.Store
	tracker tracking.Tracker
	admins  []int64
}

// New builds the bot. With no admins /stats is open to everyone.
func New(b brain.Completer, prompts persona.Resolver, store tasks.Store, tracker tracking.Tracker, admins []int64) *Bot {
	return &Bot{brain: b, prompts: prompts, store: store, tracker: tracker, admins: admins}
}

func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.start)
	r.Handle("list", bot.Command("list"), b.list)
	r.Handle("done", bot.Command("done"), b.done)
	r.Handle("stats", bot.Command("stats"), b.stats)
	r.Handle("decompose", bot.CallbackPrefix(DecomposePrefix), b.decompose)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("capture", bot.AnyText(), b.capture)
}

func (b *Bot) start(c *bot.Context) error {
	c.Reply("👋 *Незабудка AI*\nПиши задачу, идею или заметку. /list покажет активные, /done N закроет.", nil)
	return nil
}

// capture turns a message into a stored task.
func (b *Bot) capture(c *bot.Context) error {
	telegram.Typing(c.API, c.ChatID)
	res := b.brain.Complete(c.Ctx, b.prompts.Resolve("secretary"), c.Text, "")
	t := tasks.FromReply(c.UserID, res.Content, c.Text)

	saved, err := b.store.Add(c.Ctx, t)
	if err != nil {
		c.Logf("save task: %v", err)
		saved = t
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⚡ Разбить на этапы", DecomposePrefix+saved.ID),
	))
	header := "✅ *" + strings.ToUpper(saved.Type) + "*"
	body := fmt.Sprintf("▫️ %s\n🏷 %s | 📅 %s", saved.Action, saved.Tag, saved.Deadline)
	c.Send(header, body, res.Footer(), kb)
	return nil
}

func (b *Bot) decompose(c *bot.Context) error {
	c.AnswerCallback("Думаю...")
	task := ""
	if c.Message != nil {
		task = c.Message.Text
	}
	res := b.brain.Complete(c.Ctx, b.prompts.Resolve("decomposer"), "Декомпозируй: "+task, "")
	c.Send("🔨 *План:*", res.Content, res.Footer(), nil)
	return nil
}

func (b *Bot) list(c *bot.Context) error {
	active, err := b.store.Active(c.Ctx, c.UserID, tasks.DefaultLimit)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(active) == 0 {
		c.Reply("🎉 Активных задач нет.", nil)
		return nil
	}
	c.Send("📋 *Активные задачи:*", FormatList(active), "", nil)
	return nil
}

// FormatList numbers tasks the way /done expects them.
func FormatList(active []tasks.Task) string {
	var sb strings.Builder
	for i, t := range active {
		fmt.Fprintf(&sb, "%d. %s (%s, %s)\n", i+1, t.Action, t.Tag, t.Deadline)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (b *Bot) done(c *bot.Context) error {
	n, err := strconv.Atoi(strings.TrimSpace(c.Args()))
	if err != nil {
		c.Reply("Используй: /done N, где N номер из /list.", nil)
		return nil
	}
	t, err := b.store.MarkDone(c.Ctx, c.UserID, n)
	switch {
	case errors.Is(err, tasks.ErrNoSuchTask):
		c.Reply("Задачи с таким номером нет. Проверь /list.", nil)
		return nil
	case err != nil:
		return fmt.Errorf("mark done: %w", err)
	}
	c.Reply("✔️ Готово: "+t.Action, nil)
	return nil
}

func (b *Bot) stats(c *bot.Context) error {
	if len(b.admins) > 0 && !slices.Contains(b.admins, c.UserID) {
		c.Reply("⛔ Только для администраторов.", nil)
		return nil
	}
	g, err := stats.Collect(c.Ctx, b.tracker, b.store)
	if err != nil {
		return err
	}
	c.Send("📊 *Статистика:*", g.Text(), "", nil)
	return nil
}
