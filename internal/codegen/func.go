package codegen

import (
	"fmt"
	"io"
	"strings"

	"clgen/internal/ir"
	"clgen/internal/trace"
	"clgen/internal/types"
)

// DefaultIndent is used for function bodies when none is configured.
const DefaultIndent = "    "

// FuncArtifacts is everything a driver needs to emit one function.
type FuncArtifacts struct {
	Name      string `msgpack:"name"`
	Signature string `msgpack:"signature"`
	Kernel    bool   `msgpack:"kernel"`

	Allocas      []AllocaRecord `msgpack:"allocas"`
	Declarations []string       `msgpack:"declarations"`
	Statements   []string       `msgpack:"statements"`
	// Exprs maps local names to their memoized expressions.
	Exprs map[string]string `msgpack:"exprs"`

	Shims     []string    `msgpack:"shims"`
	Functions []ir.FuncID `msgpack:"functions"`

	// Values lists every generated local in program order.
	Values []ValueSummary `msgpack:"values"`

	structs []types.TypeID
}

// ValueSummary is the generated form of one value, without indentation.
type ValueSummary struct {
	Name        string `msgpack:"name"`
	Declaration string `msgpack:"decl,omitempty"`
	Expr        string `msgpack:"expr,omitempty"`
	Inline      string `msgpack:"inline,omitempty"`
}

// WriteBody writes declarations followed by statements, one per line.
func (a *FuncArtifacts) WriteBody(w io.Writer) error {
	for _, line := range a.Declarations {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	for _, line := range a.Statements {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunction writes the full definition "<signature> {\n<body>}\n".
func (a *FuncArtifacts) WriteFunction(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s {\n", a.Signature); err != nil {
		return err
	}
	if err := a.WriteBody(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// GenerateFunction generates every parameter and body value of fc.Func in
// program order and collects the results. indent prefixes each line; empty
// uses DefaultIndent.
func GenerateFunction(fc *FuncContext, indent string) (*FuncArtifacts, error) {
	f := fc.Func
	if f == nil {
		return nil, fmt.Errorf("no function to generate")
	}
	if f.External {
		return nil, fmt.Errorf("function %s is external", f.Name)
	}
	if err := ir.ValidateFunc(fc.Module, f); err != nil {
		return nil, err
	}
	if indent == "" {
		indent = DefaultIndent
	}

	span := trace.Begin(fc.tracer, trace.ScopeFunc, "func:"+f.Name, fc.span)
	parent := fc.span
	fc.span = span.ID()
	defer func() { fc.span = parent }()

	gen := NewGenerator(fc)
	ids := make([]ir.ValueID, 0, len(f.Params)+len(f.Body))
	ids = append(ids, f.Params...)
	ids = append(ids, f.Body...)
	for _, id := range ids {
		info, err := fc.Info(id)
		if err != nil {
			span.End("error")
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := gen.Run(info); err != nil {
			span.End("error")
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	sig, err := FormatSignature(fc)
	if err != nil {
		span.End("error")
		return nil, err
	}
	art := &FuncArtifacts{
		Name:      f.Name,
		Signature: sig,
		Kernel:    f.Kernel,
		Allocas:   append([]AllocaRecord(nil), fc.Allocas...),
		Exprs:     make(map[string]string),
		Shims:     fc.Deps.Shims(),
		Functions: fc.Deps.Functions(),
		structs:   append([]types.TypeID(nil), fc.Structs()...),
	}

	var sb strings.Builder
	for _, info := range fc.Ledger.Infos() {
		row := ValueSummary{Name: info.Name}
		if info.HasExpr() {
			art.Exprs[info.Name] = info.expr
			row.Expr = info.expr
		}
		if info.Value.Kind == ir.ValueArg {
			continue
		}
		sb.Reset()
		if err := info.WriteDeclaration(&sb, indent, fc.Types); err != nil {
			span.End("error")
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if sb.Len() > 0 {
			art.Declarations = append(art.Declarations, sb.String())
			row.Declaration = strings.TrimSpace(sb.String())
		}
		sb.Reset()
		if err := info.WriteInlineCl(&sb, indent); err != nil {
			span.End("error")
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if sb.Len() > 0 {
			art.Statements = append(art.Statements, sb.String())
			row.Inline = strings.TrimSpace(sb.String())
		}
		art.Values = append(art.Values, row)
		info.SetAsAssigned()
	}

	span.WithExtra("allocas", fmt.Sprint(len(art.Allocas))).
		WithExtra("statements", fmt.Sprint(len(art.Statements))).
		End("")
	return art, nil
}

// FormatSignature renders "[kernel ]<ret> <name>(<params>)". Parameters
// without a generated name are named by the local scope.
func FormatSignature(fc *FuncContext) (string, error) {
	f := fc.Func
	info, ok := fc.Module.Types.FuncInfo(f.Sig)
	if !ok {
		return "", fmt.Errorf("function %s has no signature", f.Name)
	}
	ret, err := fc.Types.CType(info.Result)
	if err != nil {
		return "", fmt.Errorf("%s result: %w", f.Name, err)
	}
	fc.useType(info.Result)
	name, err := fc.Names.Global.GetOrCreate(f.Value, f.Name)
	if err != nil {
		return "", err
	}

	params := make([]string, 0, len(f.Params))
	for _, id := range f.Params {
		pinfo, err := fc.Info(id)
		if err != nil {
			return "", err
		}
		decl, err := fc.Types.FormatDeclaration(pinfo.Value.Type, pinfo.Name)
		if err != nil {
			return "", fmt.Errorf("%s parameter %s: %w", f.Name, pinfo.Name, err)
		}
		fc.useType(pinfo.Value.Type)
		params = append(params, strings.TrimSuffix(decl, ";"))
	}

	var sb strings.Builder
	if f.Kernel {
		sb.WriteString("kernel ")
	}
	fmt.Fprintf(&sb, "%s %s(%s)", ret, name, strings.Join(params, ", "))
	return sb.String(), nil
}
