// Package trace records what the generator does while it runs.
//
// Events are grouped by scope:
//
//	ScopeDriver  command-level work (load fixture, write output)
//	ScopeModule  one GenerateModule call
//	ScopeFunc    one function body
//	ScopeValue   one ValueInfo generation
//
// The level decides which scopes are kept: phase keeps driver and module
// events, detail adds functions, debug keeps everything.
//
// Tracers travel through a context:
//
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "module", 0)
//	defer span.End("")
package trace
