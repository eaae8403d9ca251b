package latex

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "friendly"

// Inside Verbatim[commandchars=\\\{\}] these three characters start commands,
// so literal ones go through macros defined by the template preamble.
var verbatimEscaper = strings.NewReplacer(
	`\`, `\PYZbs{}`,
	`{`, `\PYZob{}`,
	`}`, `\PYZcb{}`,
)

// VerbatimFormatter is a chroma.Formatter writing a fancyvrb Verbatim
// environment with \textcolor runs.
type VerbatimFormatter struct{}

var _ chroma.Formatter = VerbatimFormatter{}

// Format implements chroma.Formatter.
func (VerbatimFormatter) Format(w io.Writer, style *chroma.Style, it chroma.Iterator) error {
	var b strings.Builder
	b.WriteString("\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n")
	for _, line := range chroma.SplitTokensIntoLines(it.Tokens()) {
		for _, tok := range line {
			writeToken(&b, style.Get(tok.Type), tok.Value)
		}
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\\end{Verbatim}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeToken emits one token. Text is split per line so no command spans a
// line break, which fancyvrb cannot handle.
func writeToken(b *strings.Builder, entry chroma.StyleEntry, value string) {
	parts := strings.SplitAfter(value, "\n")
	for _, part := range parts {
		text := strings.TrimSuffix(part, "\n")
		if text != "" {
			b.WriteString(styled(entry, verbatimEscaper.Replace(text)))
		}
		if strings.HasSuffix(part, "\n") {
			b.WriteByte('\n')
		}
	}
}

func styled(entry chroma.StyleEntry, text string) string {
	if entry.Colour.IsSet() {
		text = fmt.Sprintf(`\textcolor[HTML]{%s}{%s}`, strings.TrimPrefix(entry.Colour.String(), "#"), text)
	}
	if entry.Italic == chroma.Yes {
		text = `\textit{` + text + `}`
	}
	if entry.Bold == chroma.Yes {
		text = `\textbf{` + text + `}`
	}
	return text
}

// Highlighter renders source code as highlighted Verbatim blocks.
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter returns a Highlighter using the named chroma style, falling
// back to DefaultStyle and then to chroma's fallback for unknown names.
func NewHighlighter(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if styleName == "" || style == styles.Fallback {
		style = styles.Get(DefaultStyle)
	}
	return &Highlighter{style: style}
}

// Highlight renders code in the given language. Unknown languages are
// rendered without colours.
func (h *Highlighter) Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenising %s code: %w", language, err)
	}
	var b strings.Builder
	if err := (VerbatimFormatter{}).Format(&b, h.style, it); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Verbatim wraps text in a plain Verbatim environment.
func Verbatim(text string) string {
	var b strings.Builder
	b.WriteString("\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n")
	b.WriteString(verbatimEscaper.Replace(text))
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\\end{Verbatim}\n")
	return b.String()
}
