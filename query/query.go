// Package query parses gallery search strings such as
//
//	author:"jane doe" sunset
//
// into field scoped substring filters plus a free text remainder, and
// evaluates them against records.
package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The leading group stands in for a lookbehind: a token only starts at the
// beginning of the input or after whitespace.
var reOperator = regexp.MustCompile(`(^|\s)(\w+):(?:"([^"]*)"|'([^']*)'|(\S+))`)

var reSpaces = regexp.MustCompile(`\s+`)

// Query is a parsed search string.
type Query struct {
	// Operators maps a field name to the substring its value must contain.
	Operators map[string]string `json:"operators"`
	// Text is what remains after removing operator tokens.
	Text string `json:"text"`
}

// Fields is implemented by anything that can be filtered. Field returns the
// value stored under name, or "" when the record has no such value.
type Fields interface {
	Field(name string) string
}

// Parse lower-cases raw and splits it into operators and residual text.
// Later occurrences of a field overwrite earlier ones.
func Parse(raw string) Query {
	s := lower(raw)
	q := Query{Operators: map[string]string{}}

	rest := reOperator.ReplaceAllStringFunc(s, func(tok string) string {
		m := reOperator.FindStringSubmatchIndex(tok)
		field := tok[m[4]:m[5]]
		// Exactly one of the three value groups participated.
		for g := 3; g <= 5; g++ {
			if m[2*g] >= 0 {
				q.Operators[field] = tok[m[2*g]:m[2*g+1]]
				break
			}
		}
		return tok[m[2]:m[3]]
	})

	q.Text = strings.TrimSpace(reSpaces.ReplaceAllString(rest, " "))
	return q
}

// Empty reports whether q matches every record.
func (q Query) Empty() bool {
	return len(q.Operators) == 0 && q.Text == ""
}

// String re-encodes q with operators in field order, quoting values that
// contain whitespace.
func (q Query) String() string {
	fields := make([]string, 0, len(q.Operators))
	for f := range q.Operators {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		v := q.Operators[f]
		if v == "" || strings.ContainsAny(v, " \t\n") {
			if strings.Contains(v, `"`) {
				v = "'" + v + "'"
			} else {
				v = `"` + v + `"`
			}
		}
		parts = append(parts, f+":"+v)
	}
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	return strings.Join(parts, " ")
}

// OperatorKey encodes the operators alone, sorted by field with every value
// quoted, so distinct operator sets never share a key. String cannot serve
// here: residual text shaped like an operator re-encodes as one.
func (q Query) OperatorKey() string {
	fields := make([]string, 0, len(q.Operators))
	for f := range q.Operators {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
		b.WriteByte(':')
		b.WriteString(strconv.Quote(q.Operators[f]))
		b.WriteByte(' ')
	}
	return b.String()
}

// Matches reports whether r satisfies q.
//
// With operators present every field must hold a non-empty value containing
// the operator value, and the residual text is checked against the name only.
// Without operators the residual text may match either the name or the author.
func Matches(r Fields, q Query) bool {
	if len(q.Operators) > 0 {
		for field, want := range q.Operators {
			have := r.Field(field)
			if have == "" || !strings.Contains(lower(have), want) {
				return false
			}
		}
		return q.Text == "" || strings.Contains(lower(r.Field("name")), q.Text)
	}

	if q.Text == "" {
		return true
	}
	if strings.Contains(lower(r.Field("name")), q.Text) {
		return true
	}
	author := r.Field("author")
	return author != "" && strings.Contains(lower(author), q.Text)
}

// Filter returns the items matching q in their original order. The input
// slice is left untouched.
func Filter[T Fields](items []T, q Query) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}

// lower builds a fresh Caser per call; Casers carry state and must not be
// shared between goroutines.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
