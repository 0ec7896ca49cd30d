package types

import "strings"

// SetSeparator joins set-of-string members inside a single CSV cell.
const SetSeparator = ", "

// setEscape replaces the separator sequence inside a member so the wire form
// stays splittable. The substitution is lossy but rare in practice.
const setEscape = " / "

// JoinSet serializes a set of strings into its single-cell wire form. Members
// containing the separator sequence are rewritten with setEscape; empty and
// duplicate members are dropped, first occurrence order is preserved. JoinSet
// and SplitSet are the only functions that touch the wire form.
func JoinSet(members []string) string {
	if len(members) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(strings.ReplaceAll(m, SetSeparator, setEscape))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return strings.Join(out, SetSeparator)
}

// SplitSet parses the single-cell wire form back into members. An empty cell
// is an empty set.
func SplitSet(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, SetSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
