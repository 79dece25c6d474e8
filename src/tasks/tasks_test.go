package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teambots/teambots/src/data"
)

func sqlStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := data.ConnectSQL("sqlite:" + filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSQLStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func stores(t *testing.T) map[string]Store {
	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    sqlStore(t),
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		m := data.NewMongo(uri, "teambots_"+t.Name())
		t.Cleanup(func() {
			if db, err := m.Database(context.Background()); err == nil {
				_ = db.Drop(context.Background())
			}
			m.Close(context.Background())
		})
		out["mongo"] = NewMongoStore(m)
	}
	return out
}

func TestBuyMilkTomorrow(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			reply := "Вот разбор:\n```json\n{\"type\":\"задача\",\"action\":\"купить молоко\",\"tag\":\"#дом\",\"deadline\":\"завтра\"}\n```"
			added, err := s.Add(ctx, FromReply(7, reply, "купить молоко завтра"))
			if err != nil {
				t.Fatal(err)
			}
			if added.Status != Pending || added.Action != "купить молоко" || added.Deadline != "завтра" {
				t.Fatalf("added = %+v", added)
			}

			active, err := s.Active(ctx, 7, 0)
			if err != nil || len(active) != 1 || active[0].ID != added.ID {
				t.Fatalf("active = %+v, %v", active, err)
			}

			done, err := s.MarkDone(ctx, 7, 1)
			if err != nil {
				t.Fatal(err)
			}
			if done.ID != added.ID || done.Status != Done {
				t.Errorf("done = %+v", done)
			}

			active, err = s.Active(ctx, 7, 0)
			if err != nil || len(active) != 0 {
				t.Errorf("done task still active: %+v, %v", active, err)
			}
			if _, err := s.MarkDone(ctx, 7, 1); !errors.Is(err, ErrNoSuchTask) {
				t.Errorf("second done err = %v", err)
			}

			st, err := s.Stats(ctx)
			if err != nil || st.Total != 1 || st.Pending != 0 {
				t.Errorf("stats = %+v, %v", st, err)
			}
		})
	}
}

func TestActiveNewestFirstAndScoped(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
			for i, action := range []string{"первая", "вторая", "третья"} {
				if _, err := s.Add(ctx, Task{UserID: 1, Action: action, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := s.Add(ctx, Task{UserID: 2, Action: "чужая", CreatedAt: base}); err != nil {
				t.Fatal(err)
			}

			active, err := s.Active(ctx, 1, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(active) != 3 || active[0].Action != "третья" || active[2].Action != "первая" {
				t.Fatalf("active = %+v", active)
			}

			if _, err := s.MarkDone(ctx, 1, 2); err != nil {
				t.Fatal(err)
			}
			active, _ = s.Active(ctx, 1, 0)
			if len(active) != 2 || active[0].Action != "третья" || active[1].Action != "первая" {
				t.Errorf("after done = %+v", active)
			}
			if _, err := s.MarkDone(ctx, 1, 0); !errors.Is(err, ErrNoSuchTask) {
				t.Errorf("index 0 err = %v", err)
			}
			if _, err := s.MarkDone(ctx, 1, 3); !errors.Is(err, ErrNoSuchTask) {
				t.Errorf("index past end err = %v", err)
			}
		})
	}
}

func TestFromReply(t *testing.T) {
	cases := []struct {
		name, reply, original string
		want                  Task
	}{
		{
			name:  "embedded object",
			reply: `Конечно! {"type":"идея","action":"открыть кофейню","tag":"#бизнес"} Удачи`,
			want:  Task{Type: "идея", Action: "открыть кофейню", Tag: "#бизнес", Deadline: "нет"},
		},
		{
			name:     "no json",
			reply:    "не понял",
			original: "позвонить маме",
			want:     Task{Type: "заметка", Action: "позвонить маме", Tag: "#inbox", Deadline: "нет"},
		},
		{
			name:     "broken json",
			reply:    `{"type": "задача", "action": }`,
			original: "x",
			want:     Task{Type: "заметка", Action: "x", Tag: "#inbox", Deadline: "нет"},
		},
		{
			name:     "blank action keeps the message",
			reply:    `{"type":"задача","action":"","deadline":"пятница"}`,
			original: "сдать отчёт",
			want:     Task{Type: "задача", Action: "сдать отчёт", Tag: "#inbox", Deadline: "пятница"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FromReply(3, c.reply, c.original)
			if got.UserID != 3 || got.Status != Pending || got.CreatedAt.IsZero() {
				t.Errorf("defaults not applied: %+v", got)
			}
			if got.Type != c.want.Type || got.Action != c.want.Action || got.Tag != c.want.Tag || got.Deadline != c.want.Deadline {
				t.Errorf("got %+v, want %+v", got, c.want)
			}
		})
	}
}
