// Package aiteam is the consilium bot: a message containing the trigger
// word is run through the role pipeline and every stage is posted as it
// finishes.
package aiteam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/ai/consilium"
	"github.com/teambots/teambots/src/telegram"
)

// Name is the bot's registry name; its token is TOKEN_AI_TEAM.
const Name = "ai_team"

const greeting = "👋 Я AI-команда: проджект-менеджер, аналитик, маркетолог и главред.\n" +
	"Напишите идею и начните со слова «%s», например: «%s, как продавать снег зимой?»"

// Bot wires the consilium engine to Telegram.
type Bot struct {
	engine   *consilium.Engine
	cooldown *bot.Cooldown
	trigger  string
}

func New(engine *consilium.Engine, cooldown time.Duration, trigger string) *Bot {
	if trigger == "" {
		trigger = "ребята"
	}
	return &Bot{engine: engine, cooldown: bot.NewCooldown(cooldown), trigger: trigger}
}

// Register adds the bot's routes.
func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.start)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("consilium", bot.TextContains(b.trigger), b.consilium)
	r.Handle("hint", bot.AnyText(), b.start)
}

func (b *Bot) start(c *bot.Context) error {
	c.Reply(fmt.Sprintf(greeting, b.trigger, capitalize(b.trigger)), nil)
	return nil
}

func (b *Bot) consilium(c *bot.Context) error {
	if !b.cooldown.CanUse(c.UserID) {
		wait := b.cooldown.TimeUntilNext(c.UserID).Round(time.Second)
		c.Reply(fmt.Sprintf("⏳ Команда ещё работает над прошлой идеей. Попробуйте через %s.", wait), nil)
		return nil
	}

	idea := strings.TrimSpace(c.Text)
	status := c.Status(fmt.Sprintf("🚀 *Команда услышала:*\n_%s_\n\nСобираем консилиум...", idea))
	obs := &observer{c: c, status: status}

	tr, err := b.engine.Run(c.Ctx, idea, obs)
	var stageErr *consilium.StageError
	switch {
	case errors.As(err, &stageErr):
		c.Logf("consilium aborted at %s: %v", stageErr.Stage, stageErr.Err)
		_ = status.Delete()
		if len(tr.Outputs) == 0 {
			b.cooldown.Reset(c.UserID)
		}
		c.Reply(fmt.Sprintf("❌ Консилиум остановился на этапе «%s». Попробуйте ещё раз позже.", stageErr.Title), nil)
		return nil
	case err != nil:
		return err
	}

	_ = status.Delete()
	c.Logf("consilium finished: %d stages", len(tr.Outputs))
	return nil
}

// observer mirrors pipeline progress into the chat.
type observer struct {
	c      *bot.Context
	status *telegram.Status
}

func (o *observer) Started(_ context.Context, batch []consilium.Stage) {
	for _, st := range batch {
		if st.Status != "" {
			if err := o.status.Update(st.Status); err != nil {
				o.c.Logf("status update: %v", err)
			}
			return
		}
	}
}

func (o *observer) Completed(_ context.Context, outputs []consilium.Output) {
	for _, out := range outputs {
		rep := o.c.Send("*"+out.Stage.Title+"*", out.Result.Content, out.Result.Footer(), nil)
		if rep.LastErr != nil {
			o.c.Logf("stage %s delivery: %v", out.Stage.ID, rep.LastErr)
		}
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
