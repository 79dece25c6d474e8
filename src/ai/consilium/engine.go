// Package consilium runs a pipeline of role-played Brain Client calls over
// one idea, disclosing each stage's output before the next starts.
package consilium

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/teambots/teambots/src/brain"
)

var (
	// ErrBrainDead marks a stage that got the placeholder answer.
	ErrBrainDead = errors.New("brain unavailable")
	// ErrEmptyOutput marks a stage that got blank content.
	ErrEmptyOutput = errors.New("empty output")
)

// StageError names the stage that aborted a run.
type StageError struct {
	Stage string
	Title string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("consilium: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Output is a finished stage.
type Output struct {
	Stage  Stage
	Result brain.Result
}

// Observer is told about progress. Completed is called, and returns, before
// the next batch starts.
type Observer interface {
	Started(ctx context.Context, batch []Stage)
	Completed(ctx context.Context, outputs []Output)
}

// Resolver maps a role to its system instruction.
type Resolver interface {
	Resolve(role string) string
}

// Engine is immutable and safe to share between concurrent runs.
type Engine struct {
	brain    brain.Completer
	prompts  Resolver
	pipeline *Pipeline
}

// NewEngine uses the default pipeline when p is nil.
func NewEngine(b brain.Completer, prompts Resolver, p *Pipeline) *Engine {
	if p == nil {
		p = DefaultPipeline()
	}
	return &Engine{brain: b, prompts: prompts, pipeline: p}
}

// Pipeline returns the definition the engine runs.
func (e *Engine) Pipeline() *Pipeline { return e.pipeline }

// Transcript is the in-memory record of one run.
type Transcript struct {
	Idea    string
	Outputs []Output
}

// Final returns the last stage's content.
func (t *Transcript) Final() Output {
	if len(t.Outputs) == 0 {
		return Output{}
	}
	return t.Outputs[len(t.Outputs)-1]
}

func (t *Transcript) String() string {
	var b strings.Builder
	b.WriteString("Идея: ")
	b.WriteString(t.Idea)
	for _, out := range t.Outputs {
		b.WriteString("\n\n## ")
		b.WriteString(out.Stage.Title)
		b.WriteString("\n")
		b.WriteString(out.Result.Content)
	}
	return b.String()
}

func (t *Transcript) byID() map[string]string {
	m := make(map[string]string, len(t.Outputs))
	for _, out := range t.Outputs {
		m[out.Stage.ID] = out.Result.Content
	}
	return m
}

// Run executes the pipeline. Outputs within a batch are reported in
// definition order. The first failing stage aborts the run with a
// *StageError; outputs already disclosed stay in the returned transcript.
func (e *Engine) Run(ctx context.Context, idea string, obs Observer) (*Transcript, error) {
	tr := &Transcript{Idea: idea}

	for _, batch := range e.pipeline.Batches() {
		if err := ctx.Err(); err != nil {
			return tr, &StageError{Stage: batch[0].ID, Title: batch[0].Title, Err: err}
		}

		data := inputData{Idea: idea, Out: tr.byID(), Transcript: tr.String()}
		inputs := make([]string, len(batch))
		for i, st := range batch {
			in, err := st.render(data)
			if err != nil {
				return tr, &StageError{Stage: st.ID, Title: st.Title, Err: fmt.Errorf("input: %w", err)}
			}
			inputs[i] = in
		}

		if obs != nil {
			obs.Started(ctx, batch)
		}

		results := make([]brain.Result, len(batch))
		var wg sync.WaitGroup
		for idx, st := range batch {
			wg.Add(1)
			go func(i int, s Stage) {
				defer wg.Done()
				results[i] = e.brain.Complete(ctx, e.prompts.Resolve(s.Role), inputs[i], s.Model)
			}(idx, st)
		}
		wg.Wait()

		outputs := make([]Output, len(batch))
		for i, st := range batch {
			res := results[i]
			switch {
			case res.Source == brain.Dead:
				log.Printf("consilium: stage %s: brain dead", st.ID)
				return tr, &StageError{Stage: st.ID, Title: st.Title, Err: ErrBrainDead}
			case strings.TrimSpace(res.Content) == "":
				return tr, &StageError{Stage: st.ID, Title: st.Title, Err: ErrEmptyOutput}
			}
			outputs[i] = Output{Stage: st, Result: res}
		}

		tr.Outputs = append(tr.Outputs, outputs...)
		if obs != nil {
			obs.Completed(ctx, outputs)
		}
	}
	return tr, nil
}
