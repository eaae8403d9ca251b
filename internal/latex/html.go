package latex

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlWriter maps the small subset of inline HTML found in notebooks to
// LaTeX. Tags are tracked on a stack because goldmark hands opening and
// closing tags over as separate nodes.
type htmlWriter struct {
	open []string
}

// write translates one raw HTML fragment. Text between tags is escaped; tags
// without a LaTeX counterpart are dropped while their text is kept.
func (h *htmlWriter) write(b *strings.Builder, raw string) {
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.TextToken:
			b.WriteString(Escape(html.UnescapeString(string(z.Raw()))))
		case html.StartTagToken:
			h.start(b, z.Token())
		case html.SelfClosingTagToken:
			if tok := z.Token(); tok.Data == "br" {
				b.WriteString("\\\\\n")
			}
		case html.EndTagToken:
			h.end(b, z.Token().Data)
		}
	}
}

func (h *htmlWriter) start(b *strings.Builder, tok html.Token) {
	switch tok.Data {
	case "br":
		b.WriteString("\\\\\n")
	case "b", "strong":
		h.push(b, tok.Data, `\textbf{`)
	case "i", "em":
		h.push(b, tok.Data, `\emph{`)
	case "code", "tt":
		h.push(b, tok.Data, `\texttt{`)
	case "a":
		href := attr(tok, "href")
		if href == "" {
			return
		}
		h.push(b, tok.Data, `\href{`+EscapeURL(href)+`}{`)
	}
}

func (h *htmlWriter) push(b *strings.Builder, tag, command string) {
	b.WriteString(command)
	h.open = append(h.open, tag)
}

// end closes tag if it is open, along with anything opened after it.
func (h *htmlWriter) end(b *strings.Builder, tag string) {
	for i := len(h.open) - 1; i >= 0; i-- {
		if h.open[i] != tag {
			continue
		}
		for range h.open[i:] {
			b.WriteByte('}')
		}
		h.open = h.open[:i]
		return
	}
}

// closeAll closes tags left open at the end of a block.
func (h *htmlWriter) closeAll(b *strings.Builder) {
	for range h.open {
		b.WriteByte('}')
	}
	h.open = h.open[:0]
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
