package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Format is the encoding of emitted events.
type Format uint8

const (
	FormatAuto   Format = iota // text, or NDJSON for a *.ndjson output path
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
)

var formatNames = []string{"auto", "text", "ndjson"}

// ParseFormat also accepts "json" for NDJSON.
func ParseFormat(s string) (Format, error) {
	if strings.EqualFold(s, "json") {
		return FormatNDJSON, nil
	}
	i, err := lookupName("trace format", s, formatNames, int(FormatAuto))
	return Format(i), err
}

func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	DurUS    int64             `json:"dur_us,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		DurUS:    ev.Dur.Microseconds(),
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

var arrows = [...]string{KindSpanBegin: "→ ", KindSpanEnd: "← ", KindPoint: "• "}

// formatText renders "[  seq] <indent><arrow> name (detail) {k=v} dur".
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if depth := int(ev.Scope) - int(ScopeDriver); depth > 0 {
		sb.WriteString(strings.Repeat("  ", depth))
	}
	if int(ev.Kind) < len(arrows) {
		sb.WriteString(arrows[ev.Kind])
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		keys := lo.Keys(ev.Extra)
		slices.Sort(keys)
		pairs := lo.Map(keys, func(k string, _ int) string { return k + "=" + ev.Extra[k] })
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	if ev.Kind == KindSpanEnd && ev.Dur > 0 {
		fmt.Fprintf(&sb, " %s", ev.Dur.Round(time.Microsecond))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
