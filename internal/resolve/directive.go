package resolve

import "regexp"

var (
	// Anything may follow the closing delimiter, typically a // or /* */
	// comment.
	includeRe    = regexp.MustCompile(`^\s*#include\s*([<"])(.*?)([>"]).*$`)
	pragmaOnceRe = regexp.MustCompile(`^\s*#pragma\s+once(?:\s.*)?$`)
)

// directive is a parsed #include line.
type directive struct {
	name   string
	quoted bool // "name" form: resolved relative to the including file
}

// parseDirective reports whether line is an include directive. Mismatched
// delimiters such as <name" are an error.
func parseDirective(line string) (directive, bool, error) {
	m := includeRe.FindStringSubmatch(line)
	if m == nil {
		return directive{}, false, nil
	}
	switch {
	case m[1] == "<" && m[3] == ">":
		return directive{name: m[2]}, true, nil
	case m[1] == `"` && m[3] == `"`:
		return directive{name: m[2], quoted: true}, true, nil
	}
	return directive{}, true, ErrBadDirective
}

func hasPragmaOnce(lines []string) bool {
	for _, line := range lines {
		if pragmaOnceRe.MatchString(line) {
			return true
		}
	}
	return false
}
