package parser

import "strings"

// normaliseInput lowercases and collapses whitespace. Punctuation is kept:
// arguments carry signs, decimals, cell keys and coin ids.
func normaliseInput(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

func tokenise(normalised string) []string {
	if strings.TrimSpace(normalised) == "" {
		return nil
	}
	return strings.Fields(normalised)
}
