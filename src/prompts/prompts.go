// Package prompts resolves role names to system instructions.
package prompts

import (
	"embed"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Fallback is returned for roles without a profile.
const Fallback = "Ты полезный ассистент. Отвечай по-русски, кратко и по делу."

//go:embed profiles/*.txt
var defaults embed.FS

// Resolver holds role profiles loaded once at construction.
type Resolver struct {
	profiles map[string]string
}

// New loads the embedded profiles and overlays any <role>.txt found in dir.
// An empty or missing dir leaves the defaults in place.
func New(dir string) *Resolver {
	r := &Resolver{profiles: map[string]string{}}

	entries, err := fs.ReadDir(defaults, "profiles")
	if err != nil {
		log.Printf("prompts: embedded profiles: %v", err)
	}
	for _, e := range entries {
		raw, err := defaults.ReadFile("profiles/" + e.Name())
		if err != nil {
			continue
		}
		r.set(e.Name(), string(raw))
	}

	if dir = strings.TrimSpace(dir); dir == "" {
		return r
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("prompts: profiles dir %s: %v", dir, err)
		return r
	}
	overlaid := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".txt" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			log.Printf("prompts: read %s: %v", f.Name(), err)
			continue
		}
		if r.set(f.Name(), string(raw)) {
			overlaid++
		}
	}
	log.Printf("prompts: %d profiles loaded, %d from %s", len(r.profiles), overlaid, dir)
	return r
}

func (r *Resolver) set(file, text string) bool {
	role := strings.ToLower(strings.TrimSuffix(file, ".txt"))
	text = strings.TrimSpace(text)
	if role == "" || text == "" {
		return false
	}
	r.profiles[role] = text
	return true
}

// Resolve returns the instruction for role, or Fallback.
func (r *Resolver) Resolve(role string) string {
	if r != nil {
		if text, ok := r.profiles[strings.ToLower(strings.TrimSpace(role))]; ok {
			return text
		}
	}
	return Fallback
}

// Has reports whether role has its own profile.
func (r *Resolver) Has(role string) bool {
	if r == nil {
		return false
	}
	_, ok := r.profiles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}
