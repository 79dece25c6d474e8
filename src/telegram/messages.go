package telegram

import (
	"strings"
	"unicode/utf16"
)

// MaxMessageLen is Telegram's limit for one text message, in UTF-16 code
// units.
const MaxMessageLen = 4096

// Compose joins the non-empty parts with a blank line.
func Compose(header, body, footer string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{header, body, footer} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Chunk splits text into pieces of at most limit UTF-16 code units, the
// unit Telegram counts in. Each cut is made right after the last newline
// inside the window, or at the limit when the window has none. Joining the
// chunks yields text unchanged.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var out []string
	for {
		end := fit(runes, limit)
		if end == len(runes) {
			break
		}
		cut := end
		for i := end - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// fit returns how many leading runes fit in limit UTF-16 units, at least one.
func fit(runes []rune, limit int) int {
	units := 0
	for i, r := range runes {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return max(i, 1)
		}
		units += n
	}
	return len(runes)
}
