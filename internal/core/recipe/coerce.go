package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// coerceRule is one delimiter convention tried against a string value.
// Rules run in fixed precedence order and the first match wins; new rules
// get appended, never reordered, since downstream data depends on the
// existing behavior.
type coerceRule struct {
	match func(s string) bool
	split func(s string) []string
}

var coerceRules = []coerceRule{
	{
		// Double-pipe delimiter, the newest convention.
		match: func(s string) bool { return strings.Contains(s, "||") },
		split: func(s string) []string { return splitTrim(s, "||") },
	},
	{
		// Literal backslash-n escape sequences from models that emit
		// escaped rather than real newlines.
		match: func(s string) bool { return strings.Contains(s, `\n`) },
		split: func(s string) []string { return splitTrim(s, `\n`) },
	},
	{
		match: func(s string) bool { return strings.Contains(s, "\n") },
		split: func(s string) []string { return splitTrim(s, "\n") },
	},
	{
		// Comma-joined lists, but only when the string has no period.
		// The period check keeps prose like "Mix the flour. Add eggs,
		// then stir." intact; it also means an ingredient like
		// "1 cup flour, sifted." stays a single element. Known quirk,
		// kept on purpose.
		match: func(s string) bool {
			return !strings.Contains(s, ".") && len(strings.Split(s, ",")) > 1
		},
		split: func(s string) []string { return splitTrim(s, ",") },
	},
}

// CoerceStrings converts a value of unknown shape into an ordered string
// sequence. Already-array values pass through with elements unmodified;
// strings are split by the first matching delimiter convention; anything
// else yields an empty sequence.
func CoerceStrings(value interface{}) []string {
	return CoerceStringsOr(value, []string{})
}

// CoerceStringsOr is CoerceStrings with a caller-supplied fallback for
// values that are neither array-shaped nor strings.
func CoerceStringsOr(value interface{}, fallback []string) []string {
	switch v := value.(type) {
	case nil:
		return fallback
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			switch e := elem.(type) {
			case string:
				out = append(out, e)
			default:
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case string:
		if v == "" {
			return fallback
		}
		// A string that parses as a JSON array is recursed into as-is.
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var arr []interface{}
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				return CoerceStringsOr(arr, fallback)
			}
		}
		for _, rule := range coerceRules {
			if rule.match(v) {
				return rule.split(v)
			}
		}
		return []string{v}
	default:
		return fallback
	}
}

// splitTrim splits on sep, trims each part, and drops blanks.
func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
