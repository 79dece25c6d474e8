package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeSender records outgoing messages and rejects the listed parse modes.
type fakeSender struct {
	reject  map[string]bool
	sent    []tgbotapi.MessageConfig
	req     []tgbotapi.Chattable
	nextID  int
	failAll bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}
	if f.failAll {
		return tgbotapi.Message{}, errors.New("dial tcp: connection refused")
	}
	mode := msg.ParseMode
	if mode == "" {
		mode = "plain"
	}
	if f.reject[mode] {
		return tgbotapi.Message{}, &tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities: unsupported start tag"}
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.req = append(f.req, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestCompose(t *testing.T) {
	cases := []struct {
		header, body, footer string
		want                 string
	}{
		{"H", "B", "F", "H\n\nB\n\nF"},
		{"", "B", "F", "B\n\nF"},
		{"H", "B", "", "H\n\nB"},
		{"", "", "", ""},
	}
	for _, c := range cases {
		if got := Compose(c.header, c.body, c.footer); got != c.want {
			t.Errorf("Compose(%q,%q,%q) = %q", c.header, c.body, c.footer, got)
		}
	}
}

func TestChunkReassembles(t *testing.T) {
	line := strings.Repeat("снег ", 30) + "\n"
	inputs := []string{
		"short",
		strings.Repeat(line, 200),
		strings.Repeat("я", 10000),
		strings.Repeat("a", 4096),
		strings.Repeat("a", 4097),
	}
	for _, in := range inputs {
		chunks := Chunk(in, MaxMessageLen)
		n := utf8.RuneCountInString(in)
		min := (n + MaxMessageLen - 1) / MaxMessageLen
		if len(chunks) < min {
			t.Errorf("len %d: %d chunks, want at least %d", n, len(chunks), min)
		}
		for i, c := range chunks {
			if utf8.RuneCountInString(c) > MaxMessageLen {
				t.Errorf("len %d: chunk %d has %d runes", n, i, utf8.RuneCountInString(c))
			}
		}
		if strings.Join(chunks, "") != in {
			t.Errorf("len %d: chunks do not reassemble", n)
		}
	}
}

func TestChunkCutsAfterNewline(t *testing.T) {
	text := strings.Repeat("a", 3000) + "\n" + strings.Repeat("b", 3000)
	chunks := Chunk(text, MaxMessageLen)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n") || strings.Contains(chunks[1], "a") {
		t.Errorf("cut not at newline: %q...", chunks[1][:10])
	}
}

func TestChunkCountsUTF16Units(t *testing.T) {
	in := strings.Repeat("😀", 3000)
	chunks := Chunk(in, MaxMessageLen)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len(utf16.Encode([]rune(c))); n > MaxMessageLen {
			t.Errorf("chunk %d is %d UTF-16 units", i, n)
		}
	}
	if strings.Join(chunks, "") != in {
		t.Error("chunks do not reassemble")
	}
}

func TestPlainKeepsAngleBracketText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"if a<b and c>d then x_y", "if a<b and c>d then xy"},
		{"<b>жирный</b> и <i>курсив</i>", "жирный и курсив"},
		{`<a href="https://t.me">ссылка</a> 3 < 5`, "ссылка 3 < 5"},
		{"Tom & Jerry &amp; co", "Tom & Jerry &amp; co"},
		{"x <- y, List<int>", "x <- y, List<int>"},
	}
	for _, c := range cases {
		if got := Plain(c.in); got != c.want {
			t.Errorf("Plain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSendMarkdownFirst(t *testing.T) {
	f := &fakeSender{}
	rep := Send(f, Reply{ChatID: 1, Header: "*Вердикт:*", Body: "текст", Footer: "m | Gateway"})
	if rep.Delivered != 1 || rep.LastErr != nil {
		t.Fatalf("report = %+v", rep)
	}
	if f.sent[0].ParseMode != tgbotapi.ModeMarkdown {
		t.Errorf("mode = %q", f.sent[0].ParseMode)
	}
	if f.sent[0].Text != "*Вердикт:*\n\nтекст\n\nm | Gateway" {
		t.Errorf("text = %q", f.sent[0].Text)
	}
}

func TestSendFallsBackToPlain(t *testing.T) {
	f := &fakeSender{reject: map[string]bool{tgbotapi.ModeMarkdown: true, tgbotapi.ModeHTML: true}}
	body := "**жирный _курсив <b>тег</b> `код` ~зачёркнутый~"

	rep := Send(f, Reply{ChatID: 7, Body: body})
	if rep.Delivered != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Modes[0] != "plain" {
		t.Errorf("modes = %v", rep.Modes)
	}
	got := f.sent[0].Text
	for _, sigil := range []string{"*", "_", "`", "~", "<b>", "</b>"} {
		if strings.Contains(got, sigil) {
			t.Errorf("plain text still has %q: %q", sigil, got)
		}
	}
	if !strings.Contains(got, "тег") {
		t.Errorf("plain text lost content: %q", got)
	}
}

func TestSendHTMLEscapes(t *testing.T) {
	f := &fakeSender{reject: map[string]bool{tgbotapi.ModeMarkdown: true}}
	Send(f, Reply{ChatID: 1, Body: "a < b > c"})
	if f.sent[0].ParseMode != tgbotapi.ModeHTML || f.sent[0].Text != "a &lt; b &gt; c" {
		t.Errorf("sent = %+v", f.sent[0])
	}
}

func TestSendKeyboardOnLastChunk(t *testing.T) {
	f := &fakeSender{}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⚡ Разбить на этапы", "decomp_"),
	))
	body := strings.Repeat(strings.Repeat("x", 99)+"\n", 100)

	rep := Send(f, Reply{ChatID: 1, Body: body, Keyboard: kb})
	if rep.Chunks < 3 || rep.Delivered != rep.Chunks {
		t.Fatalf("report = %+v", rep)
	}
	for i, m := range f.sent {
		last := i == len(f.sent)-1
		if (m.ReplyMarkup != nil) != last {
			t.Errorf("chunk %d keyboard = %v", i, m.ReplyMarkup)
		}
	}
}

func TestSendKeyboardSkipsBlankTail(t *testing.T) {
	f := &fakeSender{}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⚡ Разбить на этапы", "decomp_"),
	))
	body := strings.Repeat("a", 4000) + "\n" + strings.Repeat(" ", 200)

	rep := Send(f, Reply{ChatID: 1, Body: body, Keyboard: kb})
	if rep.Chunks != 2 || rep.Delivered != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if f.sent[0].ReplyMarkup == nil {
		t.Error("keyboard dropped with the blank chunk")
	}
}

func TestSendNeverPanicsOnTransportFailure(t *testing.T) {
	rep := Send(&fakeSender{failAll: true}, Reply{ChatID: 1, Body: "x"})
	if rep.Delivered != 0 || rep.LastErr == nil {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Modes) != 1 || rep.Modes[0] != "plain" {
		t.Errorf("modes = %v", rep.Modes)
	}
}

func TestStatusLifecycle(t *testing.T) {
	f := &fakeSender{}
	st, err := NewStatus(f, 5, "⏳ думаю")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Update("⏳ ещё думаю"); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(); err != nil {
		t.Fatal(err)
	}
	if len(f.req) != 2 {
		t.Fatalf("requests = %d", len(f.req))
	}
	if _, ok := f.req[0].(tgbotapi.EditMessageTextConfig); !ok {
		t.Errorf("first request = %T", f.req[0])
	}
	if del, ok := f.req[1].(tgbotapi.DeleteMessageConfig); !ok || del.MessageID != st.MessageID() {
		t.Errorf("second request = %#v", f.req[1])
	}

	var nilStatus *Status
	if nilStatus.Update("x") != nil || nilStatus.Delete() != nil {
		t.Error("nil status should be a no-op")
	}
}

type locator string

func (l locator) GetFileDirectURL(string) (string, error) { return string(l), nil }

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "содержимое")
	}))
	defer srv.Close()

	data, err := Download(context.Background(), locator(srv.URL+"/file/doc.txt"), srv.Client(), "id", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "содержимое" {
		t.Errorf("data = %q", data)
	}
}
