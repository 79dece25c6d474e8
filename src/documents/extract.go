// Package documents reads uploaded files and renders change reports.
package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupported is returned for extensions the bot cannot read.
var ErrUnsupported = errors.New("documents: unsupported file type")

// Accepted lists the extensions offered to users.
var Accepted = []string{".docx", ".pdf", ".txt"}

// Ext returns the lower-cased extension of name.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsAccepted reports whether name has an extension from Accepted.
func IsAccepted(name string) bool {
	ext := Ext(name)
	for _, a := range Accepted {
		if a == ext {
			return true
		}
	}
	return false
}

// Extract returns the plain text of a .docx or .txt file. PDF is accepted
// at upload but has no text layer reader, so it yields ErrUnsupported.
func Extract(name string, data []byte) (string, error) {
	switch Ext(name) {
	case ".txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("documents: %s is not UTF-8", name)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	case ".docx":
		return docxText(data)
	}
	return "", ErrUnsupported
}

// Truncate keeps at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("documents: open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("documents: open body: %w", err)
		}
		defer rc.Close()
		return paragraphs(rc)
	}
	return "", errors.New("documents: docx has no word/document.xml")
}

// paragraphs walks WordprocessingML, joining w:t runs and breaking on w:p.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("documents: parse docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return strings.Join(out, "\n"), nil
}
