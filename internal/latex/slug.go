package latex

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Slugify turns heading text into a label key: case folded, letters and
// digits kept, whitespace runs collapsed to '-'.
func Slugify(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range folder.String(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == '-', r == '_', unicode.IsSpace(r):
			dash = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}

// Slugger hands out unique slugs for one document.
type Slugger struct {
	seen map[string]int
}

// NewSlugger returns an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the slug for text, suffixed with -1, -2, ... when the same
// slug was already handed out.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	n, ok := s.seen[base]
	if !ok {
		s.seen[base] = 0
		return base
	}
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := s.seen[candidate]; !taken {
			s.seen[base] = n
			s.seen[candidate] = 0
			return candidate
		}
	}
}
