// Package fixture builds IR modules from a declarative TOML description.
//
//	module = "kernels"
//
//	[[struct]]
//	name = "struct.point"
//	fields = ["float", "float"]
//
//	[[global]]
//	name = "table"
//	type = "[16 x float]"
//	space = "constant"
//
//	[[declare]]
//	name = "llvm.sqrt.f32"
//	result = "float"
//	params = ["float"]
//
//	[[func]]
//	name = "mykernel"
//	kernel = true
//	result = "void"
//	params = [{ name = "out", type = "i32 addrspace(1)*" }, { name = "n", type = "i32" }]
//
//	[[func.instr]]
//	op = "alloca"
//	name = "x"
//	type = "i32"
//
//	[[func.instr]]
//	op = "store"
//	args = ["%n", "%x"]
//
// Operands are %local, @global, "undef <type>", "null <type>", true, false
// or "<type> <literal>" such as "i32 5" and "float 1.5".
package fixture

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"clgen/internal/ir"
	"clgen/internal/types"
)

type file struct {
	Module  string        `toml:"module"`
	Structs []structDecl  `toml:"struct"`
	Globals []globalDecl  `toml:"global"`
	Declare []declareDecl `toml:"declare"`
	Funcs   []funcDecl    `toml:"func"`
}

type structDecl struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type globalDecl struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Space string `toml:"space"`
}

type declareDecl struct {
	Name   string   `toml:"name"`
	Result string   `toml:"result"`
	Params []string `toml:"params"`
}

type paramDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type funcDecl struct {
	Name   string      `toml:"name"`
	Kernel bool        `toml:"kernel"`
	Result string      `toml:"result"`
	Params []paramDecl `toml:"params"`
	Instrs []instrDecl `toml:"instr"`
}

type instrDecl struct {
	Op      string   `toml:"op"`
	Name    string   `toml:"name"`
	Type    string   `toml:"type"`
	Count   uint32   `toml:"count"`
	Pred    string   `toml:"pred"`
	Callee  string   `toml:"callee"`
	Args    []string `toml:"args"`
	Indices []uint32 `toml:"indices"`
}

// Load reads and builds the fixture at path. The module name defaults to
// the file name without extension.
func Load(path string) (*ir.Module, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("module") {
		f.Module = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	m, err := build(&f, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse builds a module from fixture text.
func Parse(src string) (*ir.Module, error) {
	var f file
	meta, err := toml.Decode(src, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return build(&f, meta)
}

func build(f *file, meta toml.MetaData) (*ir.Module, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}
	if strings.TrimSpace(f.Module) == "" {
		return nil, fmt.Errorf("missing module name")
	}
	m := ir.NewModule(f.Module)

	for _, s := range f.Structs {
		fields := make([]types.TypeID, 0, len(s.Fields))
		for _, src := range s.Fields {
			id, err := ParseType(m.Types, src)
			if err != nil {
				return nil, fmt.Errorf("[struct] %s: %w", s.Name, err)
			}
			fields = append(fields, id)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("[struct] missing name")
		}
		m.Types.RegisterStruct(s.Name, fields)
	}

	for _, g := range f.Globals {
		elem, err := ParseType(m.Types, g.Type)
		if err != nil {
			return nil, fmt.Errorf("[global] %s: %w", g.Name, err)
		}
		space, err := parseSpace(g.Space)
		if err != nil {
			return nil, fmt.Errorf("[global] %s: %w", g.Name, err)
		}
		m.NewGlobal(g.Name, elem, space)
	}

	for _, d := range f.Declare {
		sig, err := signature(m.Types, d.Result, d.Params)
		if err != nil {
			return nil, fmt.Errorf("[declare] %s: %w", d.Name, err)
		}
		if _, err := m.DeclareFunc(d.Name, sig); err != nil {
			return nil, err
		}
	}

	// Signatures first so calls may reference functions defined later.
	defined := make([]*ir.Func, len(f.Funcs))
	for i, fd := range f.Funcs {
		ptypes := make([]string, len(fd.Params))
		pnames := make([]string, len(fd.Params))
		for j, p := range fd.Params {
			ptypes[j], pnames[j] = p.Type, p.Name
		}
		sig, err := signature(m.Types, fd.Result, ptypes)
		if err != nil {
			return nil, fmt.Errorf("[func] %s: %w", fd.Name, err)
		}
		if m.FuncByName(fd.Name) != nil {
			return nil, fmt.Errorf("[func] %s defined twice", fd.Name)
		}
		fn, err := m.NewFunc(fd.Name, sig, pnames...)
		if err != nil {
			return nil, err
		}
		fn.Kernel = fd.Kernel
		defined[i] = fn
	}
	for i, fd := range f.Funcs {
		if err := buildBody(m, defined[i], fd.Instrs); err != nil {
			return nil, fmt.Errorf("[func] %s: %w", fd.Name, err)
		}
	}
	return m, nil
}

func signature(in *types.Interner, result string, params []string) (types.TypeID, error) {
	if result == "" {
		result = "void"
	}
	ret, err := ParseType(in, result)
	if err != nil {
		return 0, err
	}
	ps := make([]types.TypeID, 0, len(params))
	for _, src := range params {
		id, err := ParseType(in, src)
		if err != nil {
			return 0, err
		}
		ps = append(ps, id)
	}
	return in.Func(ret, ps), nil
}

func parseSpace(s string) (types.AddrSpace, error) {
	switch s {
	case "", "private":
		return types.AddrPrivate, nil
	case "global":
		return types.AddrGlobal, nil
	case "local":
		return types.AddrLocal, nil
	case "constant":
		return types.AddrConstant, nil
	default:
		return 0, fmt.Errorf("unknown address space %q", s)
	}
}
