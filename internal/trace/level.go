package trace

import (
	"fmt"
	"strings"
)

// Level controls how fine-grained the emitted scopes are.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // driver and module boundaries
	LevelDetail       // plus per-function spans
	LevelDebug        // plus per-value events
)

var levelNames = []string{"off", "phase", "detail", "debug"}

// finest is the finest scope each level keeps.
var finest = [...]Scope{
	LevelOff:    0,
	LevelPhase:  ScopeModule,
	LevelDetail: ScopeFunc,
	LevelDebug:  ScopeValue,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts any case; "" means off.
func ParseLevel(s string) (Level, error) {
	i, err := lookupName("trace level", s, levelNames, 0)
	return Level(i), err
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(finest) && scope != 0 && scope <= finest[l]
}

// lookupName finds s in names case-insensitively. The empty string maps to
// index def.
func lookupName(what, s string, names []string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	for i, name := range names {
		if name != "" && strings.EqualFold(s, name) {
			return i, nil
		}
	}
	return def, fmt.Errorf("invalid %s: %q (expected: %s)", what, s, strings.Join(nonEmpty(names), "|"))
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
