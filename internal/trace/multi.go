package trace

import "errors"

// MultiTracer hands every event to each of its tracers.
type MultiTracer struct {
	sinks []Tracer
	level Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{sinks: tracers, level: level}
}

// Emit gives each sink its own copy, since sinks stamp Seq.
func (t *MultiTracer) Emit(ev *Event) {
	for _, sink := range t.sinks {
		dup := *ev
		sink.Emit(&dup)
	}
}

func (t *MultiTracer) each(fn func(Tracer) error) error {
	errs := make([]error, 0, len(t.sinks))
	for _, sink := range t.sinks {
		errs = append(errs, fn(sink))
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Flush() error  { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error  { return t.each(Tracer.Close) }
func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
