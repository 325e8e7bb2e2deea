package validators

import "strings"

// SanitizeString trims whitespace and caps the length of a client-supplied
// identifier. Control characters are removed so header values cannot smuggle
// newlines into log output.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < ' ' || r == 0x7f {
			return -1
		}
		return r
	}, input)
	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 && len(cleaned) > maxLen {
		return cleaned[:maxLen]
	}
	return cleaned
}
