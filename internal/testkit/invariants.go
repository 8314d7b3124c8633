package testkit

import (
	"fmt"
	"regexp"
	"strings"
)

var declRe = regexp.MustCompile(`^(?:[A-Za-z_]\w*[\s*]+)+([A-Za-z_]\w*)(?:\[\d+\])*;$`)

// declaredName returns the local a body line declares, if it is a
// declaration at all.
func declaredName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "return ") || strings.Contains(line, "=") {
		return "", false
	}
	m := declRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CheckDeclarationBeforeUse runs the declaration invariants on a generated
// function body, one line per element:
// 1) each local is declared at most once
// 2) no line mentions a declared local before its declaration
// 3) every name in wantDeclared is declared
func CheckDeclarationBeforeUse(body []string, wantDeclared []string) error {
	declaredAt := make(map[string]int)
	for i, line := range body {
		name, ok := declaredName(line)
		if !ok {
			continue
		}
		if prev, dup := declaredAt[name]; dup {
			return fmt.Errorf("%s declared twice (lines %d and %d)", name, prev+1, i+1)
		}
		declaredAt[name] = i
	}

	for name, at := range declaredAt {
		word := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		for i := 0; i < at; i++ {
			if word.MatchString(body[i]) {
				return fmt.Errorf("%s used on line %d before its declaration on line %d", name, i+1, at+1)
			}
		}
	}

	for _, name := range wantDeclared {
		if _, ok := declaredAt[name]; !ok {
			return fmt.Errorf("%s is never declared", name)
		}
	}
	return nil
}

// Lines splits generated text into lines without the trailing empty one.
func Lines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
