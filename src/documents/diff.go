package documents

import (
	"fmt"
	"html"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const reportHead = `<!DOCTYPE html>
<html><head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: sans-serif; padding: 20px; line-height: 1.5; }
.summary { background: #e0e0e0; padding: 8px 12px; margin-bottom: 16px; }
del { background: #ffe6e6; color: #a33; }
ins { background: #e6ffe6; color: #262; text-decoration: none; }
.diff { white-space: pre-wrap; }
</style>
</head><body>
`

// DiffStats counts changed runes.
type DiffStats struct {
	Inserted int
	Deleted  int
}

// Changed reports whether the texts differ.
func (s DiffStats) Changed() bool { return s.Inserted+s.Deleted > 0 }

// DiffReport renders original vs modified as a standalone HTML page.
func DiffReport(title, original, modified string) (string, DiffStats) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, modified, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var (
		b     strings.Builder
		stats DiffStats
	)
	fmt.Fprintf(&b, reportHead, html.EscapeString(title))
	body := &strings.Builder{}
	for _, d := range diffs {
		text := html.EscapeString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Inserted += len([]rune(d.Text))
			body.WriteString("<ins>" + text + "</ins>")
		case diffmatchpatch.DiffDelete:
			stats.Deleted += len([]rune(d.Text))
			body.WriteString("<del>" + text + "</del>")
		default:
			body.WriteString(text)
		}
	}
	fmt.Fprintf(&b, "<h2>%s</h2>\n<div class=\"summary\">Оригинал → Результат AI: +%d / −%d символов</div>\n",
		html.EscapeString(title), stats.Inserted, stats.Deleted)
	b.WriteString("<div class=\"diff\">")
	b.WriteString(body.String())
	b.WriteString("</div>\n</body></html>\n")
	return b.String(), stats
}
