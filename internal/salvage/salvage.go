// Package salvage recovers structured JSON from free-text LLM output.
//
// Providers wrap JSON in markdown fences, prepend explanatory prose, or
// truncate long objects mid-field. This package handles exactly those
// malformations and nothing more: it is a best-effort string salvage
// routine, not a JSON grammar. Nested braces inside string literals can
// defeat the span search; callers must always supply a fallback value.
package salvage

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON span exists in the input.
var ErrNoJSON = errors.New("no JSON found in response")

var (
	fenceRe    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	preambleRe = regexp.MustCompile(`(?is)^\s*(?:sure[,!.]?|okay[,!.]?|here(?:'s| is)\b[^\[{]*?[:.\n])\s*`)
)

// Clean strips markdown code fences and leading explanatory phrases.
func Clean(response string) string {
	s := response
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = preambleRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first array or object span found in the response.
// The span is taken greedily from the first opening bracket to the last
// matching close character. A truncated object is cut back to the last '}'
// seen; whether the cut parses is the caller's problem. Returns "" when no
// span exists.
func ExtractJSON(response string) string {
	s := Clean(response)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return ""
	}
	s = s[start:]

	open := s[0]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	end := strings.LastIndexByte(s, closer)
	if end == -1 {
		return ""
	}
	return s[:end+1]
}

// Unmarshal extracts a JSON span from the response and decodes it into v.
// A truncated object is repaired by cutting back to the last complete
// field and re-closing the braces; if that still fails the error is
// returned so the caller can substitute its fallback.
func Unmarshal(response string, v any) error {
	span := ExtractJSON(response)
	if span == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(span), v); err == nil {
		return nil
	}

	// Truncation repair: the span may end inside a nested value. Re-closing
	// with up to two braces covers the shapes observed from the three
	// providers in practice; deeper truncation falls through to the caller's
	// fallback.
	if strings.HasPrefix(span, "{") {
		trimmed := strings.TrimRight(span, ", \n\t")
		for _, suffix := range []string{"", "}", "}}"} {
			if err := json.Unmarshal([]byte(trimmed+suffix), v); err == nil {
				return nil
			}
		}
	}

	return ErrNoJSON
}

// Results decodes the response into a list of raw result objects. It
// accepts a bare JSON array, a {"results": [...]} wrapper, and the
// "array-like object" pathology where a provider emits an object with
// purely numeric string keys instead of an array.
func Results(response string) ([]json.RawMessage, error) {
	span := ExtractJSON(response)
	if span == "" {
		return nil, ErrNoJSON
	}

	// Bare array.
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(span), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := Unmarshal(response, &obj); err != nil {
		return nil, ErrNoJSON
	}

	// Wrapped shape.
	if raw, ok := obj["results"]; ok {
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, ErrNoJSON
		}
		return arr, nil
	}

	// Array-like object: every key is a decimal integer.
	type entry struct {
		idx int
		raw json.RawMessage
	}
	entries := make([]entry, 0, len(obj))
	for k, raw := range obj {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, ErrNoJSON
		}
		entries = append(entries, entry{idx: n, raw: raw})
	}
	if len(entries) == 0 {
		return nil, ErrNoJSON
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	arr = make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		arr = append(arr, e.raw)
	}
	return arr, nil
}

// Strings decodes the response into a string list, falling back to the
// supplied value on any parse or shape failure.
func Strings(response string, fallback []string) []string {
	var out []string
	if err := Unmarshal(response, &out); err != nil || len(out) == 0 {
		return fallback
	}
	return out
}
