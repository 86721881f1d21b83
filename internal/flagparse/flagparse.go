// Package flagparse turns raw compound flag values (comma-separated tuples,
// key=value pairs, credential strings, JSON blobs) into typed values. All
// failures are *FormatError so callers can report which flag was malformed.
package flagparse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatError describes a malformed compound flag value.
type FormatError struct {
	Flag   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("--%s: %s", e.Flag, e.Reason)
}

// Tuple parses a comma-separated integer tuple. A single value is broadcast
// to all four positions; otherwise exactly four values are required. The
// returned slice always has length 4.
func Tuple(flag, raw string) ([]int, error) {
	segs, err := splitSegments(flag, raw)
	if err != nil {
		return nil, err
	}
	if len(segs) != 1 && len(segs) != 4 {
		return nil, &FormatError{flag, fmt.Sprintf("expected 1 or 4 comma-separated values, got %d", len(segs))}
	}

	vals := make([]int, len(segs))
	for i, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &FormatError{flag, fmt.Sprintf("%q is not an integer", s)}
		}
		vals[i] = n
	}

	if len(vals) == 1 {
		return []int{vals[0], vals[0], vals[0], vals[0]}, nil
	}
	return vals, nil
}

// Margin is one segment of a margin tuple: either a bare number (pixels) or
// a number with a physical unit suffix. Unit segments keep their original
// text so "0.5in" round-trips exactly.
type Margin struct {
	Value float64
	Unit  string // px, in, cm or mm; empty for bare numbers
	Raw   string // original segment text
}

// MarshalJSON emits bare numbers as JSON numbers and unit values as the
// verbatim segment string.
func (m Margin) MarshalJSON() ([]byte, error) {
	if m.Unit == "" {
		return json.Marshal(m.Value)
	}
	return json.Marshal(m.Raw)
}

func (m Margin) String() string { return m.Raw }

// marginUnits are the physical units a margin segment may carry.
var marginUnits = []string{"px", "in", "cm", "mm"}

// MarginTuple parses a comma-separated margin tuple. Like Tuple, one value
// broadcasts to four. Units may differ between segments and are not
// normalized.
func MarginTuple(flag, raw string) ([]Margin, error) {
	segs, err := splitSegments(flag, raw)
	if err != nil {
		return nil, err
	}
	if len(segs) != 1 && len(segs) != 4 {
		return nil, &FormatError{flag, fmt.Sprintf("expected 1 or 4 comma-separated values, got %d", len(segs))}
	}

	vals := make([]Margin, len(segs))
	for i, s := range segs {
		m, err := parseMargin(flag, s)
		if err != nil {
			return nil, err
		}
		vals[i] = m
	}

	if len(vals) == 1 {
		return []Margin{vals[0], vals[0], vals[0], vals[0]}, nil
	}
	return vals, nil
}

func parseMargin(flag, seg string) (Margin, error) {
	unit := ""
	num := seg
	for _, u := range marginUnits {
		if strings.HasSuffix(seg, u) {
			unit = u
			num = strings.TrimSuffix(seg, u)
			break
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Margin{}, &FormatError{flag, fmt.Sprintf("%q is not a number with optional px/in/cm/mm unit", seg)}
	}
	return Margin{Value: v, Unit: unit, Raw: seg}, nil
}

// KeyValue folds repeated key/value entries into one map. Each entry is
// split on the first occurrence of any separator rune; key and value are
// trimmed, later keys overwrite earlier ones, and further separator
// characters stay verbatim inside the value.
func KeyValue(flag string, entries []string, seps string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		i := strings.IndexAny(entry, seps)
		if i < 0 {
			return nil, &FormatError{flag, fmt.Sprintf("%q is missing a %q separator", entry, seps)}
		}
		key := strings.TrimSpace(entry[:i])
		if key == "" {
			return nil, &FormatError{flag, fmt.Sprintf("%q has an empty key", entry)}
		}
		out[key] = strings.TrimSpace(entry[i+1:])
	}
	return out, nil
}

// Credentials splits a username:password pair on the first colon only, so
// passwords may contain colons.
func Credentials(raw string) (username, password string) {
	username, password, _ = strings.Cut(raw, ":")
	return username, password
}

// JSONObject parses a raw string as a JSON object. Anything that is not a
// JSON object (arrays, scalars, garbage) fails with the decoder's message.
func JSONObject(flag, raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &FormatError{flag, fmt.Sprintf("invalid JSON object: %v", err)}
	}
	return out, nil
}

// splitSegments splits a comma-separated value and trims each segment.
// Empty segments are rejected outright.
func splitSegments(flag, raw string) ([]string, error) {
	segs := strings.Split(raw, ",")
	for i, s := range segs {
		segs[i] = strings.TrimSpace(s)
		if segs[i] == "" {
			return nil, &FormatError{flag, "empty values not allowed"}
		}
	}
	return segs, nil
}
