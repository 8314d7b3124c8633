package codegen

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"clgen/internal/ir"
	"clgen/internal/names"
	"clgen/internal/trace"
	"clgen/internal/typefmt"
	"clgen/internal/types"
)

// Options configures module generation.
type Options struct {
	// Indent prefixes body lines; empty uses DefaultIndent.
	Indent string
	// Jobs bounds parallel function generation; <= 0 uses GOMAXPROCS.
	Jobs int
	// Calls routes external functions; nil uses DefaultCallTable.
	Calls *CallTable
}

// ModuleArtifacts is the generated form of a whole module.
type ModuleArtifacts struct {
	Name string `msgpack:"name"`
	// Structs holds struct definitions, fields before containers.
	Structs []string         `msgpack:"structs"`
	Globals []string         `msgpack:"globals"`
	Funcs   []*FuncArtifacts `msgpack:"funcs"`
	Shims   []string         `msgpack:"shims"`
}

// GenerateModule generates every defined function of m. Global names are
// bound up front; function bodies then run in parallel, each in its own
// FuncContext. Results keep module order.
func GenerateModule(ctx context.Context, m *ir.Module, opts Options) (*ModuleArtifacts, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeModule, "module:"+m.Name, trace.CurrentSpan(ctx))

	art, err := generateModule(ctx, m, opts, tracer, span.ID())
	if err != nil {
		span.End("error")
		return nil, err
	}
	span.WithExtra("funcs", strconv.Itoa(len(art.Funcs))).
		WithExtra("shims", strconv.Itoa(len(art.Shims))).
		End("")
	return art, nil
}

func generateModule(ctx context.Context, m *ir.Module, opts Options, tracer trace.Tracer, parent uint64) (*ModuleArtifacts, error) {
	calls := opts.Calls
	if calls == nil {
		calls = DefaultCallTable()
	}
	indent := opts.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	globals := names.NewTable(names.ScopeGlobal)
	var defined []*ir.Func
	for _, f := range m.Funcs {
		if f.External {
			continue
		}
		if _, err := globals.GetOrCreate(f.Value, f.Name); err != nil {
			return nil, err
		}
		defined = append(defined, f)
	}
	tf := typefmt.New(m.Types)
	art := &ModuleArtifacts{Name: m.Name}
	for _, id := range m.Globals {
		v := m.Value(id)
		name, err := globals.GetOrCreate(id, v.Name)
		if err != nil {
			return nil, err
		}
		decl, err := tf.FormatGlobalDeclaration(v.Type, name)
		if err != nil {
			return nil, err
		}
		art.Globals = append(art.Globals, decl)
	}

	results := make([]*FuncArtifacts, len(defined))
	if len(defined) > 0 {
		jobs := opts.Jobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(defined)))
		for i, f := range defined {
			i, f := i, f
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				fc := NewFuncContext(m, f, globals, calls).WithTracer(tracer, parent)
				fa, err := GenerateFunction(fc, indent)
				if err != nil {
					return err
				}
				results[i] = fa
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	deps := NewDeps()
	seen := make(map[types.TypeID]struct{})
	for _, fa := range results {
		for _, s := range fa.Shims {
			deps.AddShim(s)
		}
		for _, id := range fa.structs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			layout, err := tf.Layout(id)
			if err != nil {
				return nil, err
			}
			def, err := tf.FormatStructDefinition(layout, indent)
			if err != nil {
				return nil, err
			}
			art.Structs = append(art.Structs, def)
		}
	}
	art.Funcs = results
	art.Shims = deps.Shims()
	return art, nil
}

// WriteSource writes a complete translation unit: struct definitions,
// globals, prototypes for non-kernel functions, then every definition.
func (a *ModuleArtifacts) WriteSource(w io.Writer) error {
	for _, def := range a.Structs {
		if _, err := io.WriteString(w, def+"\n"); err != nil {
			return err
		}
	}
	for _, g := range a.Globals {
		if _, err := io.WriteString(w, g+"\n"); err != nil {
			return err
		}
	}
	if len(a.Globals) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	protos := 0
	for _, fa := range a.Funcs {
		if fa.Kernel {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s;\n", fa.Signature); err != nil {
			return err
		}
		protos++
	}
	if protos > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	for i, fa := range a.Funcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := fa.WriteFunction(w); err != nil {
			return err
		}
	}
	return nil
}

// Func returns the artifacts for the named function, or nil.
func (a *ModuleArtifacts) Func(name string) *FuncArtifacts {
	for _, fa := range a.Funcs {
		if fa.Name == name {
			return fa
		}
	}
	return nil
}
