// Package persona serves single-role bots: every message goes to the brain
// with one fixed profile and comes back under a fixed header.
package persona

import (
	"strings"

	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/brain"
)

// Profile describes one persona bot.
type Profile struct {
	Role     string
	Greeting string
	Progress string
	Header   string
}

// Skeptic roasts ideas.
var Skeptic = Profile{
	Role:     "skeptic",
	Greeting: "🤨 Я Скептик. Пиши идею, я найду в ней дыры.",
	Progress: "🔥 Ищу недостатки...",
	Header:   "💀 *Вердикт:*",
}

// Staff is the office assistant.
var Staff = Profile{
	Role:     "staff",
	Greeting: "👋 Привет! Я HR-ассистент и помощник по офису. Чем помочь?",
	Progress: "📁 Поднимаю документы...",
	Header:   "📄 *Ответ:*",
}

// Resolver maps a role to its system instruction.
type Resolver interface {
	Resolve(role string) string
}

// Bot answers free text in character.
type Bot struct {
	profile Profile
	brain   brain.Completer
	prompts Resolver
}

func New(p Profile, b brain.Completer, prompts Resolver) *Bot {
	return &Bot{profile: p, brain: b, prompts: prompts}
}

// Register adds /start, voice and the catch-all text route.
func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.Start)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("answer", bot.AnyText(), b.Answer)
}

func (b *Bot) Start(c *bot.Context) error {
	c.Reply(b.profile.Greeting, nil)
	return nil
}

// Answer runs one brain call for the message text.
func (b *Bot) Answer(c *bot.Context) error {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil
	}
	status := c.Status(b.profile.Progress)
	res := b.brain.Complete(c.Ctx, b.prompts.Resolve(b.profile.Role), text, "")
	_ = status.Delete()

	rep := c.Send(b.profile.Header, res.Content, res.Footer(), nil)
	if rep.LastErr != nil {
		c.Logf("reply delivery: %v", rep.LastErr)
	}
	return nil
}
