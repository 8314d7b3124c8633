package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// reserved holds OpenCL C keywords, type names and address space qualifiers
// that cannot be used as identifiers.
var reserved = map[string]struct{}{
	"auto": {}, "bool": {}, "break": {}, "case": {}, "char": {}, "const": {},
	"constant": {}, "continue": {}, "default": {}, "do": {}, "double": {},
	"else": {}, "enum": {}, "extern": {}, "float": {}, "for": {}, "global": {},
	"goto": {}, "half": {}, "if": {}, "inline": {}, "int": {}, "kernel": {},
	"local": {}, "long": {}, "private": {}, "register": {}, "restrict": {},
	"return": {}, "short": {}, "signed": {}, "sizeof": {}, "static": {},
	"struct": {}, "switch": {}, "typedef": {}, "uchar": {}, "uint": {},
	"ulong": {}, "union": {}, "unsigned": {}, "ushort": {}, "void": {},
	"volatile": {}, "while": {},
	"__global": {}, "__local": {}, "__constant": {}, "__private": {}, "__kernel": {},
}

// Sanitize turns a source-level hint into a valid OpenCL C identifier:
// NFC-normalize, map anything outside [A-Za-z0-9_] to '_', prefix a leading
// digit with '_' and suffix reserved words with '_'.
func Sanitize(hint string) string {
	s := norm.NFC.String(hint)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			r = '_'
		}
		if i == 0 && r >= '0' && r <= '9' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if _, bad := reserved[out]; bad {
		out += "_"
	}
	return out
}
