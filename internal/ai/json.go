package ai

import (
	"errors"
	"strings"
)

// ExtractJSONObject recovers the first balanced {...} span from model output,
// tolerating markdown code fences the model sometimes adds despite the
// strict-JSON instruction.
func ExtractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last <= first {
		return "", errors.New("JSON object not found in model output")
	}
	return s[first : last+1], nil
}
