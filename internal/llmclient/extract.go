package llmclient

// ExtractJSONObject returns the first balanced {...} object found in s.
// Providers wrap JSON in explanatory prose or markdown fences even when
// told not to, so the scanner tracks brace depth with string and escape
// awareness instead of trusting the payload shape.
func ExtractJSONObject(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", ErrNoJSONObject
}
