package utils

import (
	"fmt"
	"strings"
)

const fallbackSlug = "article"

// Slugify: нижний регистр, любые последовательности символов кроме [A-Za-z0-9_] и
// иероглифов CJK (U+4E00..U+9FA5) заменяются на "-", дефисы по краям обрезаются.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if isSlugRune(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 0x4e00 && r <= 0x9fa5:
		return true
	}
	return false
}

// SlugWithSuffix — кандидат при коллизии: base-2, base-3, ...
func SlugWithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
