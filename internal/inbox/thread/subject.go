package thread

import "strings"

var subjectPrefixes = []string{"re:", "fwd:", "fw:"}

// NormalizeSubject strips reply/forward prefixes, repeatedly, so
// "Re: Re: Fwd: X" reduces to "X". Casing of the remainder is preserved.
func NormalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	for {
		trimmed := false
		lower := strings.ToLower(subject)
		for _, prefix := range subjectPrefixes {
			if strings.HasPrefix(lower, prefix) {
				subject = strings.TrimSpace(subject[len(prefix):])
				trimmed = true
				break
			}
		}
		if !trimmed {
			return subject
		}
	}
}
