package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/actions/bot/bottest"
	"github.com/teambots/teambots/src/fsm"
)

func run(t *testing.T, m *Module, upds ...tgbotapi.Update) {
	t.Helper()
	for _, u := range upds {
		m.HandleUpdate(u)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		m.Wait(ctx)
		cancel()
	}
}

func TestRouterFirstMatchWins(t *testing.T) {
	var hits []string
	r := NewRouter()
	record := func(name string) Handler {
		return func(*Context) error { hits = append(hits, name); return nil }
	}
	r.Handle("start", Command("start"), record("start"))
	r.Handle("team", TextContains("ребята"), record("team"))
	r.Handle("begin", TextEquals("🚀 Начать"), record("begin"))
	r.Handle("step", InState("audience"), record("step"))
	r.Handle("decomp", CallbackPrefix("decomp_"), record("decomp"))
	r.Handle("doc", Document(), record("doc"))
	r.Handle("voice", Voice(), record("voice"))
	r.Handle("text", AnyText(), record("text"))

	api := bottest.NewAPI()
	m := NewModule("test", "", api, r, Deps{})
	ctx := context.Background()
	dispatch := func(u tgbotapi.Update, st fsm.State) {
		c := newContext(ctx, m, "req", u)
		c.State = st
		if _, ok, _ := r.Dispatch(c); !ok {
			hits = append(hits, "-")
		}
	}

	dispatch(bottest.Command(1, "/start@team_bot payload"), fsm.State{})
	dispatch(bottest.Text(1, "Ребята, продаём снег"), fsm.State{})
	dispatch(bottest.Text(1, "🚀 Начать"), fsm.State{})
	dispatch(bottest.Text(1, "школьники"), fsm.State{Step: "audience"})
	dispatch(bottest.Callback(1, "decomp_", "задача"), fsm.State{})
	dispatch(bottest.Document(1, "f1", "a.docx"), fsm.State{})
	dispatch(bottest.Voice(1), fsm.State{})
	dispatch(bottest.Text(1, "просто текст"), fsm.State{})
	dispatch(bottest.Command(1, "/unknown"), fsm.State{})

	want := "start,team,begin,step,decomp,doc,voice,text,-"
	if got := strings.Join(hits, ","); got != want {
		t.Errorf("routes = %s\nwant     %s", got, want)
	}
}

func TestContextArgs(t *testing.T) {
	m := NewModule("test", "", bottest.NewAPI(), NewRouter(), Deps{})
	c := newContext(context.Background(), m, "r", bottest.Command(1, "/done 3"))
	if c.Args() != "3" || c.UserID != 1 || c.ChatID != 1 {
		t.Errorf("context = %+v args=%q", c, c.Args())
	}
}

func TestModuleReportsHandlerFailure(t *testing.T) {
	r := NewRouter()
	r.Handle("boom", AnyText(), func(*Context) error { return errors.New("db down") })
	api := bottest.NewAPI()
	m := NewModule("test", "", api, r, Deps{})

	run(t, m, bottest.Text(5, "привет"))
	if !strings.Contains(api.Joined(), "Что-то пошло не так") {
		t.Errorf("sent = %v", api.Texts())
	}
}

func TestModuleRecoversPanics(t *testing.T) {
	r := NewRouter()
	r.Handle("panic", AnyText(), func(*Context) error { panic("nil map") })
	m := NewModule("test", "", bottest.NewAPI(), r, Deps{})
	run(t, m, bottest.Text(5, "привет"))
}

func TestModuleAnswersCallbacks(t *testing.T) {
	r := NewRouter()
	r.Handle("cb", CallbackPrefix("x"), func(c *Context) error { return nil })
	api := bottest.NewAPI()
	m := NewModule("test", "", api, r, Deps{})

	run(t, m, bottest.Callback(5, "x1", "msg"))
	var answered bool
	for _, req := range api.Requests {
		if _, ok := req.(tgbotapi.CallbackConfig); ok {
			answered = true
		}
	}
	if !answered {
		t.Error("callback was not acknowledged")
	}
}

func TestModuleLoadsAndPersistsState(t *testing.T) {
	states := fsm.NewMemoryStore(time.Hour)
	r := NewRouter()
	r.Handle("second", InState("second"), func(c *Context) error {
		c.Reply("got "+c.State.Data["first"]+" and "+c.Text, nil)
		return c.ClearState()
	})
	r.Handle("first", AnyText(), func(c *Context) error {
		return c.SetState(fsm.State{Step: "second"}.With("first", c.Text))
	})
	api := bottest.NewAPI()
	m := NewModule("test", "", api, r, Deps{States: states})

	run(t, m, bottest.Text(9, "один"), bottest.Text(9, "два"))
	if got := api.Joined(); got != "got один and два" {
		t.Errorf("sent = %q", got)
	}
	if st, _ := states.Get(context.Background(), fsm.Key{Bot: "test", Chat: 9, User: 9}); !st.Empty() {
		t.Errorf("state not cleared: %+v", st)
	}
}

func TestModuleStartPollingAndStop(t *testing.T) {
	r := NewRouter()
	r.Handle("echo", AnyText(), func(c *Context) error {
		c.Reply("эхо: "+c.Text, nil)
		return nil
	})
	api := bottest.NewAPI()
	m := NewModule("test", "", api, r, Deps{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	api.Updates <- bottest.Text(1, "привет")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(api.Texts()) == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)

	if got := api.Joined(); got != "эхо: привет" {
		t.Errorf("sent = %q", got)
	}
}

func TestModuleStartWebhook(t *testing.T) {
	api := bottest.NewAPI()
	m := NewModule("nezabudka", "https://bots.example/webhook/nezabudka", api, NewRouter(), Deps{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Stop(context.Background())

	if len(api.Requests) != 1 {
		t.Fatalf("requests = %d", len(api.Requests))
	}
	wh, ok := api.Requests[0].(tgbotapi.WebhookConfig)
	if !ok || wh.URL.String() != "https://bots.example/webhook/nezabudka" || !wh.DropPendingUpdates {
		t.Errorf("webhook = %#v", api.Requests[0])
	}
}

func TestCooldown(t *testing.T) {
	cd := NewCooldown(time.Hour)
	if !cd.CanUse(1) {
		t.Fatal("first use should pass")
	}
	if cd.CanUse(1) {
		t.Error("second use should be throttled")
	}
	if cd.TimeUntilNext(1) <= 0 {
		t.Error("wait should be positive")
	}
	if !cd.CanUse(2) {
		t.Error("other users are independent")
	}
	cd.Reset(1)
	if !cd.CanUse(1) {
		t.Error("reset should allow again")
	}
}

func TestCooldownForgetsExpiredUsers(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cd := NewCooldown(time.Minute)
	cd.now = func() time.Time { return now }

	for u := int64(1); u <= 100; u++ {
		cd.CanUse(u)
	}
	now = now.Add(2 * time.Minute)
	if !cd.CanUse(1) {
		t.Fatal("cooldown should have expired")
	}
	if n := len(cd.users); n != 1 {
		t.Errorf("tracked users = %d, want 1", n)
	}
	if cd.TimeUntilNext(50) != 0 {
		t.Error("expired user should not wait")
	}
}
