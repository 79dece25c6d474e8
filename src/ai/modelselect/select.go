// Package modelselect picks the strongest Gemini-API model available to a key.
package modelselect

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/teambots/teambots/src/ai/core"
)

const generateAction = "generateContent"

var (
	sizeRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)b\b`)
	gemmaVer  = regexp.MustCompile(`gemma-?(\d+(?:\.\d+)?)`)
	geminiVer = regexp.MustCompile(`gemini-(\d+(?:\.\d+)?)`)
)

// Candidate is a model name with its score.
type Candidate struct {
	Name  string
	Score float64
}

// Score weights a model name. Gemma models win by size and version; Gemini
// models score lower, with bonuses for "pro" and recency tokens.
func Score(name string) float64 {
	n := normalize(name)
	switch {
	case strings.Contains(n, "gemma"):
		score := 1000.0
		if m := sizeRe.FindStringSubmatch(n); m != nil {
			size, _ := strconv.ParseFloat(m[1], 64)
			score += 10 * size
		}
		if m := gemmaVer.FindStringSubmatch(n); m != nil {
			ver, _ := strconv.ParseFloat(m[1], 64)
			score += 50 * ver
		}
		return score
	case strings.Contains(n, "gemini"):
		score := 500.0
		if m := geminiVer.FindStringSubmatch(n); m != nil {
			ver, _ := strconv.ParseFloat(m[1], 64)
			score += 50 * ver
		}
		if strings.Contains(n, "pro") {
			score += 100
		}
		if strings.Contains(n, "latest") {
			score += 30
		}
		if strings.Contains(n, "exp") || strings.Contains(n, "preview") {
			score += 10
		}
		return score
	}
	return 0
}

// Rank filters to generation-capable models and orders them best first.
// Equal scores are ordered by name.
func Rank(models []core.ModelInfo) []Candidate {
	out := make([]Candidate, 0, len(models))
	for _, m := range models {
		if !supportsGeneration(m) {
			continue
		}
		name := normalize(m.Name)
		if name == "" {
			continue
		}
		out = append(out, Candidate{Name: name, Score: Score(name)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Select lists models once and returns the best one, or fallback when the
// listing fails or yields nothing usable.
func Select(ctx context.Context, lister core.ModelLister, fallback string) string {
	if lister == nil {
		return fallback
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Printf("modelselect: listing failed, using %s: %v", fallback, err)
		return fallback
	}
	ranked := Rank(models)
	if len(ranked) == 0 {
		log.Printf("modelselect: no generation models advertised, using %s", fallback)
		return fallback
	}
	log.Printf("modelselect: selected %s (score %.0f of %d candidates)", ranked[0].Name, ranked[0].Score, len(ranked))
	return ranked[0].Name
}

func supportsGeneration(m core.ModelInfo) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == generateAction {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "models/"))
}
