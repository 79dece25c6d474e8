package consilium

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPipeline []byte

// Stage is one Brain Client call in a pipeline.
type Stage struct {
	ID     string `yaml:"id"`
	Role   string `yaml:"role"`
	Title  string `yaml:"title"`
	Status string `yaml:"status"`
	Group  string `yaml:"group"`
	Model  string `yaml:"model"`
	Input  string `yaml:"input"`

	tmpl *template.Template
}

// Pipeline is an ordered, validated list of stages.
type Pipeline struct {
	Name   string  `yaml:"name"`
	Stages []Stage `yaml:"stages"`
}

// DefaultPipeline returns the built-in PM → {analyst, marketer} → PM → editor run.
func DefaultPipeline() *Pipeline {
	p, err := ParsePipeline(defaultPipeline)
	if err != nil {
		panic(fmt.Sprintf("consilium: embedded pipeline: %v", err))
	}
	return p
}

// LoadPipeline reads a pipeline file, or returns the default when path is empty.
func LoadPipeline(path string) (*Pipeline, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPipeline(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("consilium: read pipeline: %w", err)
	}
	return ParsePipeline(raw)
}

// ParsePipeline decodes and validates a YAML pipeline definition.
func ParsePipeline(raw []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("consilium: decode pipeline: %w", err)
	}
	if len(p.Stages) == 0 {
		return nil, errors.New("consilium: pipeline has no stages")
	}

	seen := make(map[string]bool, len(p.Stages))
	for i := range p.Stages {
		st := &p.Stages[i]
		st.ID = strings.TrimSpace(st.ID)
		st.Role = strings.TrimSpace(st.Role)
		st.Group = strings.TrimSpace(st.Group)
		if st.ID == "" {
			return nil, fmt.Errorf("consilium: stage %d has no id", i+1)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("consilium: duplicate stage id %q", st.ID)
		}
		seen[st.ID] = true
		if st.Role == "" {
			return nil, fmt.Errorf("consilium: stage %q has no role", st.ID)
		}
		if strings.TrimSpace(st.Input) == "" {
			return nil, fmt.Errorf("consilium: stage %q has no input", st.ID)
		}
		if st.Title == "" {
			st.Title = st.ID
		}
		tmpl, err := template.New(st.ID).Option("missingkey=error").Parse(st.Input)
		if err != nil {
			return nil, fmt.Errorf("consilium: stage %q input: %w", st.ID, err)
		}
		st.tmpl = tmpl
	}
	return &p, nil
}

// Batches groups consecutive stages sharing a non-empty group. Stages in a
// batch run concurrently.
func (p *Pipeline) Batches() [][]Stage {
	var out [][]Stage
	for _, st := range p.Stages {
		n := len(out)
		if st.Group != "" && n > 0 && out[n-1][0].Group == st.Group {
			out[n-1] = append(out[n-1], st)
			continue
		}
		out = append(out, []Stage{st})
	}
	return out
}

type inputData struct {
	Idea       string
	Out        map[string]string
	Transcript string
}

func (s Stage) render(data inputData) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
