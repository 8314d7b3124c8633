package fixture

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"clgen/internal/types"
)

// typeParser reads the notation ir.TypeString prints:
// i32, half, float addrspace(1)*, [16 x float], <4 x i32>, %struct.point.
type typeParser struct {
	in  *types.Interner
	src string
	pos int
}

// ParseType resolves a type written in IR notation. Struct types must
// already be registered with in.
func ParseType(in *types.Interner, src string) (types.TypeID, error) {
	p := &typeParser{in: in, src: src}
	id, err := p.parse()
	if err != nil {
		return 0, fmt.Errorf("type %q: %w", src, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("type %q: unexpected %q", src, p.src[p.pos:])
	}
	return id, nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		return fmt.Errorf("expected %q at offset %d", tok, p.pos)
	}
	return nil
}

func (p *typeParser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) number() (uint32, error) {
	w := p.word()
	n, err := strconv.ParseUint(w, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad count %q", w)
	}
	return uint32(n), nil
}

func (p *typeParser) parse() (types.TypeID, error) {
	id, err := p.base()
	if err != nil {
		return 0, err
	}
	for {
		space := types.AddrPrivate
		if p.accept("addrspace(") {
			n, err := p.number()
			if err != nil {
				return 0, err
			}
			if err := p.expect(")"); err != nil {
				return 0, err
			}
			if err := p.expect("*"); err != nil {
				return 0, err
			}
			space = types.AddrSpace(n)
		} else if !p.accept("*") {
			return id, nil
		}
		id = p.in.Pointer(id, space)
	}
}

func (p *typeParser) base() (types.TypeID, error) {
	bt := p.in.Builtins()
	switch {
	case p.accept("["), p.accept("<"):
		closer := "]"
		if p.src[p.pos-1] == '<' {
			closer = ">"
		}
		n, err := p.number()
		if err != nil {
			return 0, err
		}
		if err := p.expect("x"); err != nil {
			return 0, err
		}
		elem, err := p.parse()
		if err != nil {
			return 0, err
		}
		if err := p.expect(closer); err != nil {
			return 0, err
		}
		if closer == ">" {
			return p.in.Vector(elem, n), nil
		}
		return p.in.Array(elem, n), nil
	case p.accept("%"):
		name := p.word()
		id, ok := p.in.StructByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown struct %%%s", name)
		}
		return id, nil
	}
	switch w := p.word(); w {
	case "void":
		return bt.Void, nil
	case "i1":
		return bt.I1, nil
	case "i8":
		return bt.I8, nil
	case "i16":
		return bt.I16, nil
	case "i32":
		return bt.I32, nil
	case "i64":
		return bt.I64, nil
	case "half":
		return bt.F16, nil
	case "float":
		return bt.F32, nil
	case "double":
		return bt.F64, nil
	case "":
		return 0, fmt.Errorf("missing type at offset %d", p.pos)
	default:
		return 0, fmt.Errorf("unknown type %q", w)
	}
}
