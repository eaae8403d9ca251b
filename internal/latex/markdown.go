package latex

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension"
	eastast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-nbbook/internal/notebook"
	"github.com/alnah/go-nbbook/internal/pipeline"
)

// ErrMissingAttachment indicates an attachment: image with no matching cell attachment.
var ErrMissingAttachment = errors.New("missing cell attachment")

var headingCommands = [...]string{"section", "subsection", "subsubsection", "paragraph", "subparagraph", "subparagraph"}

// attachment image types LaTeX engines can include, in preference order.
var attachmentTypes = []struct{ mime, ext string }{
	{"application/pdf", ".pdf"},
	{"image/png", ".png"},
	{"image/jpeg", ".jpg"},
}

const imageCommand = `\adjustimage{max size={0.9\linewidth}{0.9\paperheight}}`

// Markdown converts markdown cells to LaTeX.
type Markdown struct {
	md    goldmark.Markdown
	slugs *Slugger
	hl    *Highlighter

	// ImageDir, when set, anchors relative image paths so the document
	// compiles outside the chapters' directory.
	ImageDir string
}

// NewMarkdown returns a converter sharing slugs across every fragment of one
// document, so heading labels stay unique.
func NewMarkdown(hl *Highlighter, slugs *Slugger) *Markdown {
	if hl == nil {
		hl = NewHighlighter(DefaultStyle)
	}
	if slugs == nil {
		slugs = NewSlugger()
	}
	return &Markdown{
		md: goldmark.New(goldmark.WithExtensions(
			east.Table,
			east.Strikethrough,
			east.Linkify,
			east.TaskList,
			east.Footnote,
		)),
		slugs: slugs,
		hl:    hl,
	}
}

// Convert renders source to LaTeX. Images that reference a cell attachment
// are decoded into res.
func (m *Markdown) Convert(source string, attachments map[string]notebook.MimeBundle, res *Resources) (string, error) {
	protected, spans := pipeline.ProtectMath(source)
	src := []byte(protected)
	doc := m.md.Parser().Parse(text.NewReader(src))

	r := &mdRenderer{
		m:           m,
		src:         src,
		spans:       spans,
		attachments: attachments,
		res:         res,
		footnotes:   make(map[int]*eastast.Footnote),
		b:           &strings.Builder{},
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*eastast.Footnote); ok && entering {
			r.footnotes[fn.Index] = fn
		}
		return ast.WalkContinue, nil
	})
	r.render(doc)
	if r.err != nil {
		return "", r.err
	}

	out := strings.TrimRight(r.b.String(), "\n")
	if out == "" {
		return "", nil
	}
	return spans.Restore(out) + "\n", nil
}

// Filter returns the "markdown2latex" stage for one cell.
func (m *Markdown) Filter(attachments map[string]notebook.MimeBundle, res *Resources) pipeline.TextFilter {
	return pipeline.TextFilter{
		Name: "markdown2latex",
		Apply: func(s string) (string, error) {
			return m.Convert(s, attachments, res)
		},
	}
}

type mdRenderer struct {
	m           *Markdown
	src         []byte
	spans       pipeline.MathSpans
	attachments map[string]notebook.MimeBundle
	res         *Resources
	footnotes   map[int]*eastast.Footnote
	html        htmlWriter
	b           *strings.Builder
	err         error
}

func (r *mdRenderer) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.render(c)
	}
}

func (r *mdRenderer) write(s ...string) {
	for _, v := range s {
		r.b.WriteString(v)
	}
}

func (r *mdRenderer) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// capture renders n's children into a separate buffer.
func (r *mdRenderer) capture(n ast.Node) string {
	saved := r.b
	r.b = &strings.Builder{}
	r.children(n)
	r.html.closeAll(r.b)
	out := r.b.String()
	r.b = saved
	return out
}

func (r *mdRenderer) render(n ast.Node) {
	switch n := n.(type) {
	case *ast.Document:
		r.children(n)
	case *ast.Paragraph:
		r.children(n)
		r.html.closeAll(r.b)
		r.write("\n\n")
	case *ast.TextBlock:
		r.children(n)
		r.html.closeAll(r.b)
		r.write("\n")
	case *ast.Heading:
		level := min(max(n.Level, 1), len(headingCommands))
		r.write(`\`, headingCommands[level-1], "{")
		r.children(n)
		r.html.closeAll(r.b)
		label := r.m.slugs.Slug(r.spans.Restore(plainText(n, r.src)))
		r.write(`}\label{`, label, "}\n\n")
	case *ast.ThematicBreak:
		r.write("\\begin{center}\\rule{0.5\\linewidth}{0.5pt}\\end{center}\n\n")
	case *ast.FencedCodeBlock:
		r.code(r.lines(n), string(n.Language(r.src)))
	case *ast.CodeBlock:
		r.code(r.lines(n), "")
	case *ast.Blockquote:
		r.write("\\begin{quote}\n")
		r.children(n)
		r.write("\\end{quote}\n\n")
	case *ast.List:
		env := "itemize"
		if n.IsOrdered() {
			env = "enumerate"
		}
		r.write(`\begin{`, env, "}\n")
		r.children(n)
		r.write(`\end{`, env, "}\n\n")
	case *ast.ListItem:
		r.write(`\item `)
		r.children(n)
		if !strings.HasSuffix(r.b.String(), "\n") {
			r.write("\n")
		}
	case *ast.HTMLBlock:
		r.html.write(r.b, r.lines(n))
		if n.HasClosure() {
			r.html.write(r.b, string(n.ClosureLine.Value(r.src)))
		}
		r.html.closeAll(r.b)
		r.write("\n\n")
	case *ast.Text:
		r.write(Escape(textValue(n, r.src)))
		switch {
		case n.HardLineBreak():
			r.write("\\\\\n")
		case n.SoftLineBreak():
			r.write("\n")
		}
	case *ast.String:
		r.write(Escape(string(n.Value)))
	case *ast.CodeSpan:
		code := strings.ReplaceAll(plainText(n, r.src), "\n", " ")
		r.write(`\texttt{`, Escape(r.spans.Restore(code)), "}")
	case *ast.Emphasis:
		cmd := `\emph{`
		if n.Level >= 2 {
			cmd = `\textbf{`
		}
		r.write(cmd)
		r.children(n)
		r.write("}")
	case *ast.Link:
		r.link(n)
	case *ast.AutoLink:
		link := r.spans.Restore(string(n.URL(r.src)))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(link, "mailto:") {
			r.write(`\href{mailto:`, EscapeURL(link), "}{", Escape(string(n.Label(r.src))), "}")
			return
		}
		r.write(`\url{`, EscapeURL(link), "}")
	case *ast.Image:
		r.image(n)
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			r.html.write(r.b, string(seg.Value(r.src)))
		}
	case *eastast.Strikethrough:
		r.write(`\sout{`)
		r.children(n)
		r.write("}")
	case *eastast.TaskCheckBox:
		if n.IsChecked {
			r.write(`$\boxtimes$ `)
		} else {
			r.write(`$\square$ `)
		}
	case *eastast.Table:
		r.table(n)
	case *eastast.FootnoteLink:
		if fn, ok := r.footnotes[n.Index]; ok {
			r.write(`\footnote{`, strings.TrimSpace(r.capture(fn)), "}")
		}
	case *eastast.FootnoteList, *eastast.FootnoteBacklink:
		// rendered at the reference site
	default:
		r.children(n)
	}
}

func (r *mdRenderer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.src))
	}
	return b.String()
}

func (r *mdRenderer) code(code, language string) {
	out, err := r.m.hl.Highlight(r.spans.Restore(code), language)
	if err != nil {
		r.fail(err)
		return
	}
	r.write(out, "\n")
}

func (r *mdRenderer) link(n *ast.Link) {
	dest := r.spans.Restore(string(n.Destination))
	if frag, ok := strings.CutPrefix(dest, "#"); ok {
		if unescaped, err := url.PathUnescape(frag); err == nil {
			frag = unescaped
		}
		r.write(`\hyperref[`, Slugify(frag), "]{")
		r.children(n)
		r.write("}")
		return
	}
	r.write(`\href{`, EscapeURL(dest), "}{")
	r.children(n)
	r.write("}")
}

func (r *mdRenderer) image(n *ast.Image) {
	dest := r.spans.Restore(string(n.Destination))
	if name, ok := strings.CutPrefix(dest, "attachment:"); ok {
		p, err := r.attachment(name)
		if err != nil {
			r.fail(err)
			return
		}
		dest = p
	} else {
		dest = pipeline.ResolveLocalPath(dest, r.m.ImageDir)
	}
	r.write("\\begin{center}\n", imageCommand, "{", dest, "}\n\\end{center}\n")
}

func (r *mdRenderer) attachment(name string) (string, error) {
	bundle, ok := r.attachments[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingAttachment, name)
	}
	for _, t := range attachmentTypes {
		payload, ok := bundle.Get(t.mime)
		if !ok {
			continue
		}
		data, err := decodeBase64(payload)
		if err != nil {
			return "", fmt.Errorf("decoding attachment %q: %w", name, err)
		}
		file := name
		if !strings.HasSuffix(strings.ToLower(file), t.ext) {
			file += t.ext
		}
		return r.res.Add(file, data), nil
	}
	return "", fmt.Errorf("%w: %q has no PDF, PNG or JPEG payload", ErrMissingAttachment, name)
}

func (r *mdRenderer) table(t *eastast.Table) {
	var spec strings.Builder
	for _, a := range t.Alignments {
		switch a {
		case eastast.AlignRight:
			spec.WriteByte('r')
		case eastast.AlignCenter:
			spec.WriteByte('c')
		default:
			spec.WriteByte('l')
		}
	}
	r.write("\\begin{longtable}[]{@{}", spec.String(), "@{}}\n\\toprule\n")
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if cell != row.FirstChild() {
				r.write(" & ")
			}
			r.children(cell)
			r.html.closeAll(r.b)
		}
		r.write(" \\tabularnewline\n")
		if _, ok := row.(*eastast.TableHeader); ok {
			r.write("\\midrule\n")
		}
	}
	r.write("\\bottomrule\n\\end{longtable}\n\n")
}

// textValue returns the literal text of a Text node, with backslash escapes
// and character references resolved unless the node is raw.
func textValue(n *ast.Text, src []byte) string {
	v := n.Segment.Value(src)
	if n.IsRaw() {
		return string(v)
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

// plainText concatenates the text below n.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.WriteString(textValue(c, src))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.WriteString(string(c.Value))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
}
