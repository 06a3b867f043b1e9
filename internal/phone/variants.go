// Package phone derives lookup candidates from WhatsApp wire identifiers.
// Stored patient phones are not guaranteed to share a format (with or without
// the country code, with or without the mobile "9"), so a single identifier
// expands into every plausible rendering before the store lookup.
package phone

import "strings"

const countryCode = "55"

// Digits extracts the digit run from a wire identifier such as
// "5566999516222@s.whatsapp.net". Anything after the first "@" is ignored.
func Digits(identifier string) string {
	if at := strings.IndexByte(identifier, '@'); at >= 0 {
		identifier = identifier[:at]
	}
	var b strings.Builder
	b.Grow(len(identifier))
	for _, r := range identifier {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Variants returns deduplicated candidate phone strings for the identifier:
// the national number with and without the mobile "9" (covering numbers stored
// before the Brazilian 9th-digit migration), each also prefixed with the
// country code. Returns nil only when the identifier carries no digits.
func Variants(identifier string) []string {
	digits := Digits(identifier)
	if digits == "" {
		return nil
	}

	national := digits
	if strings.HasPrefix(national, countryCode) {
		trimmed := national[len(countryCode):]
		if len(trimmed) == 10 || len(trimmed) == 11 {
			national = trimmed
		}
	}

	nationals := []string{national}
	if toggled := toggleMobileNine(national); toggled != "" {
		nationals = append(nationals, toggled)
	}
	candidates := make([]string, 0, len(nationals)*2)
	candidates = append(candidates, nationals...)
	for _, c := range nationals {
		candidates = append(candidates, countryCode+c)
	}
	return unique(candidates)
}

// toggleMobileNine inserts the mobile "9" after the two-digit area code of a
// 10-digit number, or removes it from an 11-digit number. Returns "" when the
// number has neither shape.
func toggleMobileNine(national string) string {
	switch {
	case len(national) == 10:
		return national[:2] + "9" + national[2:]
	case len(national) == 11 && national[2] == '9':
		return national[:2] + national[3:]
	default:
		return ""
	}
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
