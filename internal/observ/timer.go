// Package observ measures how long each generation phase takes.
package observ

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Phase is one measured step, such as loading a fixture or generating a
// module.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	done  bool
}

// Timer collects phases in the order they begin. It is safe for concurrent
// use.
type Timer struct {
	mu     sync.Mutex
	now    func() time.Time
	phases []Phase
}

// NewTimer returns an empty timer on the wall clock.
func NewTimer() *Timer { return &Timer{now: time.Now, phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns the handle End takes.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes the phase idx. Ending an unknown or finished phase does
// nothing.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].done {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.done = true
}

// Track runs fn as a phase named name.
func (t *Timer) Track(name string, fn func() (string, error)) error {
	idx := t.Begin(name)
	note, err := fn()
	if err != nil && note == "" {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// PhaseReport is a finished view of one Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the phases. Unfinished phases count as zero.
func (t *Timer) Report() Report {
	t.mu.Lock()
	phases := slices.Clone(t.phases)
	t.mu.Unlock()
	if len(phases) == 0 {
		return Report{}
	}
	return Report{
		TotalMS: millis(lo.SumBy(phases, func(p Phase) time.Duration { return p.Dur })),
		Phases: lo.Map(phases, func(p Phase, _ int) PhaseReport {
			return PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
		}),
	}
}

func (t *Timer) Summary() string {
	var sb strings.Builder
	_ = t.WriteSummary(&sb)
	return sb.String()
}

// WriteSummary writes one aligned line per phase and a total.
func (t *Timer) WriteSummary(w io.Writer) error {
	r := t.Report()
	lines := make([]string, 0, len(r.Phases)+2)
	lines = append(lines, "timings:")
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  // " + p.Note
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("  %-20s %7.2f ms", "total", r.TotalMS))
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
