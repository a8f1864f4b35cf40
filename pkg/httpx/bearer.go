package httpx

import "strings"

// ExtractBearer pulls the bearer credential out of an Authorization header
// value. It accepts "Bearer <token>" with minor formatting variance (extra
// whitespace, stray commas) and falls back to a bare token string, but in
// every case requires a single dot-containing token-like value.
func ExtractBearer(header string) (string, bool) {
	v := strings.TrimSpace(header)
	if v == "" {
		return "", false
	}

	const scheme = "bearer"
	if len(v) >= len(scheme) && strings.EqualFold(v[:len(scheme)], scheme) {
		rest := v[len(scheme):]
		// Only treat it as a scheme prefix on a word boundary, so a bare
		// token that happens to start with "bearer" is left intact.
		if rest == "" {
			return "", false
		}
		if rest[0] == ' ' || rest[0] == '\t' || rest[0] == ',' {
			v = rest
		}
	}

	v = strings.Trim(v, " \t,")
	if v == "" || strings.ContainsAny(v, " \t,") {
		return "", false
	}
	if !strings.Contains(v, ".") {
		return "", false
	}

	return v, true
}
