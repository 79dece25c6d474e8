// Package staff is the office assistant bot: free questions go to the staff
// persona, /report walks a shift report into the spreadsheet.
package staff

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/persona"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/sheets"
)

const Name = "staff"

const (
	stepObject   = "report_object"
	stepStaff    = "report_staff"
	stepAdults   = "report_adults"
	stepDiscount = "report_discount"
	stepComment  = "report_comment"
)

const writeTimeout = 10 * time.Second

// Bot handles the staff chat.
type Bot struct {
	assistant *persona.Bot
	prices    config.Staff
	sheet     sheets.Appender
	now       func() time.Time
}

// New builds the bot. A nil sheet keeps /report working but saves nothing.
func New(b brain.Completer, prompts persona.Resolver, prices config.Staff, sheet sheets.Appender) *Bot {
	return &Bot{
		assistant: persona.New(persona.Staff, b, prompts),
		prices:    prices,
		sheet:     sheet,
		now:       time.Now,
	}
}

func (b *Bot) Register(r *bot.Router) {
	r.Handle("start", bot.Command("start"), b.assistant.Start)
	r.Handle("cancel", bot.Command("cancel"), b.cancel)
	r.Handle("report", bot.Command("report"), b.report)
	r.Handle("voice", bot.Voice(), bot.VoiceNotSupported)
	r.Handle("report_object", bot.All(bot.InState(stepObject), bot.AnyText()), b.object)
	r.Handle("report_staff", bot.All(bot.InState(stepStaff), bot.AnyText()), b.staffName)
	r.Handle("report_adults", bot.All(bot.InState(stepAdults), bot.AnyText()), b.adults)
	r.Handle("report_discount", bot.All(bot.InState(stepDiscount), bot.AnyText()), b.discount)
	r.Handle("report_comment", bot.All(bot.InState(stepComment), bot.AnyText()), b.comment)
	r.Handle("answer", bot.AnyText(), b.assistant.Answer)
}

func (b *Bot) cancel(c *bot.Context) error {
	if c.State.Empty() {
		c.Reply("Нечего отменять.", nil)
		return nil
	}
	c.Reply("Отчёт отменён.", nil)
	return c.ClearState()
}

func (b *Bot) report(c *bot.Context) error {
	c.Reply("📝 Отчёт за смену.\n1. Объект?", nil)
	return c.SetState(fsm.State{Step: stepObject})
}

func (b *Bot) object(c *bot.Context) error {
	st := c.State.With("object", strings.TrimSpace(c.Text))
	st.Step = stepStaff
	c.Reply("2. Кто на смене?", nil)
	return c.SetState(st)
}

func (b *Bot) staffName(c *bot.Context) error {
	st := c.State.With("staff", strings.TrimSpace(c.Text))
	st.Step = stepAdults
	c.Reply("3. Сколько взрослых?", nil)
	return c.SetState(st)
}

func (b *Bot) adults(c *bot.Context) error {
	n, ok := count(c.Text)
	if !ok {
		c.Reply("Нужно целое число, например 12.", nil)
		return nil
	}
	st := c.State.With("adults", strconv.Itoa(n))
	st.Step = stepDiscount
	c.Reply("4. Сколько льготных?", nil)
	return c.SetState(st)
}

func (b *Bot) discount(c *bot.Context) error {
	n, ok := count(c.Text)
	if !ok {
		c.Reply("Нужно целое число, например 0.", nil)
		return nil
	}
	st := c.State.With("discount", strconv.Itoa(n))
	st.Step = stepComment
	c.Reply("5. Комментарий (или «-»)?", nil)
	return c.SetState(st)
}

func (b *Bot) comment(c *bot.Context) error {
	note := strings.TrimSpace(c.Text)
	if note == "-" {
		note = ""
	}
	rep := b.build(c.State.With("comment", note))
	if err := c.ClearState(); err != nil {
		c.Logf("clear report state: %v", err)
	}

	summary := fmt.Sprintf("Объект: %s\nСотрудник: %s\nВзрослых: %d\nЛьготных: %d\nВыручка: %d ₽",
		rep.Object, rep.Staff, rep.Adults, rep.Discount, rep.Revenue())
	if b.sheet == nil {
		c.Send("📄 *Отчёт принят:*", summary, "таблица не настроена", nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Ctx, writeTimeout)
	defer cancel()
	if err := b.sheet.Append(ctx, rep.Row()); err != nil {
		c.Logf("sheet append: %v", err)
		c.Send("⚠️ *Отчёт не сохранён:*", summary, "попробуйте /report ещё раз", nil)
		return nil
	}
	c.Send("✅ *Отчёт сохранён:*", summary, "", nil)
	return nil
}

func (b *Bot) build(st fsm.State) sheets.Report {
	adults, _ := strconv.Atoi(st.Data["adults"])
	discount, _ := strconv.Atoi(st.Data["discount"])
	return sheets.Report{
		Date:          b.now(),
		Object:        st.Data["object"],
		Staff:         st.Data["staff"],
		Adults:        adults,
		Discount:      discount,
		PriceAdult:    b.prices.PriceAdult,
		PriceDiscount: b.prices.PriceDiscount,
		Comment:       st.Data["comment"],
	}
}

func count(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
