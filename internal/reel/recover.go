package reel

import (
	"errors"
	"strings"
)

// ErrNoJSON means the raw model output contained no recoverable JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

// ExtractJSON trims formatting noise off a raw model reply and returns the
// text between the first '{' and the last '}'. It never repairs malformed
// JSON, only boundaries: fenced code blocks are unwrapped and surrounding
// prose is dropped. Feeding the result back in is a no-op.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSON
	}

	return s[start : end+1], nil
}
