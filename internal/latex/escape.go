// Package latex renders notebook content to LaTeX: markdown cells through a
// goldmark AST walk, code through a chroma formatter, outputs by MIME
// priority. It also resolves links between chapters into cross-references.
package latex

import "strings"

var textEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`#`, `\#`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// hyperref reads \href targets almost verbatim; only these need escaping.
var urlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`#`, `\#`,
	`%`, `\%`,
	`{`, `\{`,
	`}`, `\}`,
)

var urlUnescaper = strings.NewReplacer(
	`\\`, `\`,
	`\#`, `#`,
	`\%`, `%`,
	`\{`, `{`,
	`\}`, `}`,
)

// Escape makes plain text safe for LaTeX paragraph mode.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// EscapeURL escapes a link target for \href and \url.
func EscapeURL(s string) string {
	return urlEscaper.Replace(s)
}

// UnescapeURL reverses EscapeURL.
func UnescapeURL(s string) string {
	return urlUnescaper.Replace(s)
}
