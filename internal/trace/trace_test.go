package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeModule, true},
		{LevelPhase, ScopeFunc, false},
		{LevelDetail, ScopeFunc, true},
		{LevelDetail, ScopeValue, false},
		{LevelDebug, ScopeValue, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "phase", "Detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeModule, "module", 0)
	Point(tr, ScopeValue, "value:v1", "dropped at detail", span.ID())
	span.WithExtra("funcs", "2").WithExtra("allocas", "1").End("ok")

	out := buf.String()
	if strings.Contains(out, "value:v1") {
		t.Fatalf("value scope leaked at detail level:\n%s", out)
	}
	if !strings.Contains(out, "→ module") || !strings.Contains(out, "← module (ok) {allocas=1, funcs=2}") {
		t.Fatalf("unexpected trace output:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeValue, name, "", 0)
	}
	got := tr.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeFunc, "func:k", "", 0)
	if !strings.Contains(buf.String(), `"scope":"func"`) {
		t.Fatalf("ndjson = %s", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	tr := NewRingTracer(8, LevelPhase)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(tr, ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("span id not propagated")
	}
}

func TestNopSpan(t *testing.T) {
	span := Begin(Nop, ScopeModule, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatalf("nop span must be inert")
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(4, LevelDetail)
	tr := NewMultiTracer(LevelDetail, NewStreamTracer(&buf, LevelDetail, FormatNDJSON), ring)

	span := Begin(tr, ScopeFunc, "func:k", 0)
	if d := span.End("ok"); d < 0 {
		t.Fatalf("negative duration %v", d)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Kind != KindSpanBegin || got[1].Kind != KindSpanEnd {
		t.Fatalf("ring = %+v", got)
	}
	if strings.Count(buf.String(), "\n") != 2 || !strings.Contains(buf.String(), `"kind":"end"`) {
		t.Fatalf("stream = %s", buf.String())
	}
}

func TestParseFormatAndMode(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if m, err := ParseMode(""); err != nil || m != ModeStream {
		t.Fatalf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil || !strings.Contains(err.Error(), "stream|ring|both") {
		t.Fatalf("ParseMode(disk) err = %v", err)
	}
}
