package agent

import "strings"

// ParseSelected extracts the SELECTED and REASONING blocks from a model
// response. Header matching is case-insensitive and tolerates leading
// whitespace. Reasoning spans from its header to the end of the text.
func ParseSelected(text string) (name, reasoning string, ok bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "selected:"):
			name = strings.TrimSpace(trimmed[len("selected:"):])
			ok = name != ""
		case strings.HasPrefix(lower, "reasoning:"):
			parts := []string{strings.TrimSpace(trimmed[len("reasoning:"):])}
			for _, rest := range lines[i+1:] {
				parts = append(parts, rest)
			}
			reasoning = strings.TrimSpace(strings.Join(parts, "\n"))
			return name, reasoning, ok
		}
	}
	return name, reasoning, ok
}

// MatchCandidate resolves a model response to one of the candidate names.
// Resolution order: exact match, trimmed case-insensitive match, unique
// prefix or substring match, then the same rules applied to an embedded
// "SELECTED: X" line.
func MatchCandidate(response string, names []string) (string, bool) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", false
	}

	for _, n := range names {
		if trimmed == n {
			return n, true
		}
	}

	folded := strings.ToLower(trimmed)
	for _, n := range names {
		if folded == strings.ToLower(n) {
			return n, true
		}
	}

	if n, ok := uniqueLooseMatch(folded, names); ok {
		return n, true
	}

	if sel, _, ok := ParseSelected(response); ok && sel != trimmed {
		return MatchCandidate(sel, names)
	}
	return "", false
}

// uniqueLooseMatch accepts a prefix or substring match only when it resolves
// to exactly one candidate.
func uniqueLooseMatch(folded string, names []string) (string, bool) {
	var match string
	count := 0
	for _, n := range names {
		fn := strings.ToLower(n)
		if strings.HasPrefix(fn, folded) || strings.Contains(folded, fn) {
			if match != n {
				match = n
				count++
			}
		}
	}
	if count == 1 {
		return match, true
	}
	return "", false
}
