package telegram

import (
	"html"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer turns a chunk into the text and parse mode of one delivery attempt.
type Renderer struct {
	Name      string
	ParseMode string
	Render    func(string) string
}

var (
	strict      = bluemonday.StrictPolicy()
	htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	sigils      = strings.NewReplacer("*", "", "_", "", "`", "", "~", "")
	// Tags Telegram's HTML mode understands. Anything else in angle
	// brackets is text.
	telegramTag = regexp.MustCompile(`(?i)</?(?:b|strong|i|em|u|ins|s|strike|del|code|pre|a|span|tg-spoiler|blockquote)>|<(?:a\s+href|span\s+class|code\s+class)="[^"<>]*">`)
)

// Renderers are tried in order until Telegram accepts one.
var Renderers = []Renderer{
	{Name: "markdown", ParseMode: tgbotapi.ModeMarkdown, Render: func(s string) string { return s }},
	{Name: "html", ParseMode: tgbotapi.ModeHTML, Render: EscapeHTML},
	{Name: "plain", Render: Plain},
}

// EscapeHTML escapes the two characters Telegram's HTML mode treats as tags.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Plain drops Telegram tags and Markdown sigils and keeps all other text.
func Plain(s string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range telegramTag.FindAllStringIndex(s, -1) {
		sb.WriteString(html.EscapeString(s[last:loc[0]]))
		sb.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(html.EscapeString(s[last:]))
	return sigils.Replace(html.UnescapeString(strict.Sanitize(sb.String())))
}
