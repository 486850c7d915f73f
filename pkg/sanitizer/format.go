package sanitizer

import "strings"

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return ToLower(Trim(email))
}

// MaskEmail keeps the first character of the local part and the domain, so
// "alice@example.com" becomes "a****@example.com". A one-character local
// part is hidden entirely. Input that is not a single-@ address is returned
// trimmed but unmasked.
func MaskEmail(email string) string {
	email = Trim(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return email
	}
	if len(local) == 1 {
		return "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}
