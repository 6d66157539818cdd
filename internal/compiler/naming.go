package compiler

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// identRe is the accepted shape of field and record names.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// initialisms are rendered upper-case when they make up a whole word.
var initialisms = map[string]string{
	"id":   "ID",
	"ids":  "IDs",
	"uri":  "URI",
	"url":  "URL",
	"json": "JSON",
	"http": "HTTP",
	"api":  "API",
	"uuid": "UUID",
}

// GoName converts a schema identifier into an exported Go identifier:
// "first_name" -> "FirstName", "userId" -> "UserId", "id" -> "ID".
func GoName(name string) string {
	// Casers are stateful; one per call.
	titler := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if up, ok := initialisms[strings.ToLower(part)]; ok && strings.ToLower(part) == part {
			sb.WriteString(up)
			continue
		}
		sb.WriteString(titler.String(part))
	}
	if sb.Len() == 0 {
		return "X"
	}
	out := sb.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "X" + out
	}
	return out
}

// goPrivate lowers the leading word of a Go name, for parameter names:
// "FirstName" -> "firstName", "URLPath" -> "urlPath", "ID" -> "id".
func goPrivate(name string) string {
	rs := []rune(GoName(name))
	n := 0
	for n < len(rs) && isUpper(rs[n]) {
		n++
	}
	if n > 1 && n < len(rs) {
		n--
	}
	for i := 0; i < n; i++ {
		rs[i] = toLower(rs[i])
	}
	s := string(rs)
	if goKeywords[s] {
		s += "_"
	}
	return s
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func toLower(r rune) rune {
	if isUpper(r) {
		return r + 'a' - 'A'
	}
	return r
}

// SnakeName converts a Go-style name to snake case, for file names:
// "PairMeta" -> "pair_meta", "HTTPRoute" -> "http_route".
func SnakeName(name string) string {
	rs := []rune(name)
	var sb strings.Builder
	for i, r := range rs {
		if isUpper(r) {
			prevLower := i > 0 && !isUpper(rs[i-1]) && rs[i-1] != '_'
			nextLower := i > 0 && i+1 < len(rs) && !isUpper(rs[i+1]) && rs[i+1] != '_' && isUpper(rs[i-1])
			if prevLower || nextLower {
				sb.WriteByte('_')
			}
			sb.WriteRune(toLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}
