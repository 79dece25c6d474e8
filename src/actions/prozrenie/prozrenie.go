// Package prozrenie runs the six-question brand survey and hands the answers
// to the strategist.
package prozrenie

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/persona"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/fsm"
)

const (
	Name        = "prozrenie"
	BeginButton = "🚀 Начать"
)

// Question is one survey step; Key names the answer in the collected data.
type Question struct {
	Key   string
	Label string
	Text  string
}

// Survey is asked in order.
var Survey = []Question{
	{Key: "audience", Label: "Аудитория", Text: "1. Кто твоя аудитория?"},
	{Key: "problem", Label: "Проблема", Text: "2. Какая у них проблема?"},
	{Key: "current_positioning", Label: "Оффер", Text: "3. Твой оффер (решение)?"},
	{Key: "competitors", Label: "Конкуренты", Text: "4. Кто конкуренты?"},
	{Key: "reason_to_believe", Label: "Почему верить", Text: "5. Почему тебе нужно верить (факты)?"},
	{Key: "explanation_test", Label: "Объяснение другу", Text: "6. Как клиент объяснит другу, чем ты занимаешься?"},
}

type Bot struct {
	brain   brain.Completer
	prompts persona.Resolver
}

func New(b brain.Completer, prompts persona.Resolver) *Bot {
	return &Bot{brain: b, prompts: prompts}
}

func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.start)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("begin", bot.TextEquals(BeginButton), b.begin)
	for i := range Survey {
		r.Handle("answer_"+Survey[i].Key, bot.All(bot.InState(Survey[i].Key), bot.AnyText()), b.answer)
	}
	r.Handle("hint", bot.AnyText(), b.start)
}

func (b *Bot) start(c *bot.Context) error {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BeginButton)))
	kb.ResizeKeyboard = true
	c.Reply("👋 Привет! Я AI-Стратег.\nЖми кнопку, чтобы начать разбор.", kb)
	return c.ClearState()
}

func (b *Bot) begin(c *bot.Context) error {
	c.Reply(Survey[0].Text, tgbotapi.NewRemoveKeyboard(true))
	return c.SetState(fsm.State{Step: Survey[0].Key})
}

func (b *Bot) answer(c *bot.Context) error {
	idx := position(c.State.Step)
	st := c.State.With(c.State.Step, strings.TrimSpace(c.Text))
	if idx+1 < len(Survey) {
		st.Step = Survey[idx+1].Key
		c.Reply(Survey[idx+1].Text, nil)
		return c.SetState(st)
	}

	if err := c.ClearState(); err != nil {
		c.Logf("clear survey: %v", err)
	}
	status := c.Status("⏳ Анализирую...")
	res := b.brain.Complete(c.Ctx, b.prompts.Resolve("strategist"), Brief(st.Data), "")
	_ = status.Delete()
	c.Send("📊 *Стратегия:*", res.Content, res.Footer(), nil)
	return nil
}

// Brief lays the answers out one per line in survey order.
func Brief(answers map[string]string) string {
	var sb strings.Builder
	for _, q := range Survey {
		sb.WriteString(q.Label)
		sb.WriteString(": ")
		sb.WriteString(answers[q.Key])
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func position(step string) int {
	for i, q := range Survey {
		if q.Key == step {
			return i
		}
	}
	return len(Survey) - 1
}
