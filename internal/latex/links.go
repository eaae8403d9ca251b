package latex

import (
	"net/url"
	"path"
	"strings"

	"github.com/alnah/go-nbbook/internal/pipeline"
)

// LabelPrefix starts every chapter label.
const LabelPrefix = "sec:"

const hrefCommand = `\href{`

// SectionLabel returns the label key of a chapter.
func SectionLabel(chapterID string) string {
	return LabelPrefix + chapterID
}

// LinkResolver rewrites hyperlinks that point at another chapter of the book
// into LaTeX cross-references.
type LinkResolver struct {
	ids map[string]struct{}
}

// NewLinkResolver returns a resolver for the given chapter identifiers.
func NewLinkResolver(chapterIDs []string) *LinkResolver {
	ids := make(map[string]struct{}, len(chapterIDs))
	for _, id := range chapterIDs {
		ids[id] = struct{}{}
	}
	return &LinkResolver{ids: ids}
}

// Resolve returns the label a link target refers to. Targets with a scheme
// or an authority, and fragment-only targets, never resolve. Matching is
// case-sensitive, on the whole path or on the file name without extension.
func (r *LinkResolver) Resolve(target string) (string, bool) {
	if target == "" || strings.HasPrefix(target, "#") || strings.Contains(target, "//") {
		return "", false
	}
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		return "", false
	}

	p, _, _ := strings.Cut(target, "#")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if p == "" {
		return "", false
	}
	if _, ok := r.ids[p]; ok {
		return SectionLabel(p), true
	}
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if _, ok := r.ids[stem]; ok {
		return SectionLabel(stem), true
	}
	return "", false
}

// Rewrite replaces every \href{target}{text} whose target resolves with
// "Section \ref{label}". Everything else is copied unchanged.
func (r *LinkResolver) Rewrite(latex string) string {
	if len(r.ids) == 0 || !strings.Contains(latex, hrefCommand) {
		return latex
	}

	var b strings.Builder
	b.Grow(len(latex))
	rest := latex
	for {
		i := strings.Index(rest, hrefCommand)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		target, afterTarget, ok := braceGroup(rest, len(hrefCommand)-1)
		if ok {
			var end int
			if _, end, ok = braceGroup(rest, afterTarget); ok {
				if label, found := r.Resolve(UnescapeURL(target)); found {
					b.WriteString(`Section \ref{` + label + `}`)
					rest = rest[end:]
					continue
				}
			}
		}
		b.WriteString(hrefCommand)
		rest = rest[len(hrefCommand):]
	}
}

// Filter returns the "resolve_references" text filter.
func (r *LinkResolver) Filter() pipeline.TextFilter {
	return pipeline.Pure("resolve_references", r.Rewrite)
}

// braceGroup reads the balanced {...} group opening at s[start]. It returns
// the group content and the offset just past the closing brace. Backslash
// escaped braces do not count.
func braceGroup(s string, start int) (string, int, bool) {
	if start >= len(s) || s[start] != '{' {
		return "", 0, false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}
