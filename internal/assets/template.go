package assets

import (
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/alnah/go-nbbook/internal/latex"
)

// Template names and delimiters shared by every document template.
const (
	DefaultTemplateName = "article"
	HeaderBlock         = "header"
	BaseHeaderBlock     = "super_header"
	LeftDelim           = "((*"
	RightDelim          = "*))"
)

var funcs = template.FuncMap{
	"escape": latex.Escape,
}

// Document is the data a template renders.
type Document struct {
	Title  string
	Author string
	Date   string
	Body   string
}

// Template is a parsed document template.
type Template struct {
	Name string
	tmpl *template.Template
}

// ParseTemplate parses template source.
func ParseTemplate(name, source string) (*Template, error) {
	t, err := template.New(name).Delims(LeftDelim, RightDelim).Funcs(funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, name, err)
	}
	return &Template{Name: name, tmpl: t}, nil
}

// WithPreamble returns a derived template whose header block renders the
// base header followed by preamble. The receiver is left unchanged.
func (t *Template) WithPreamble(preamble string) (*Template, error) {
	if t.tmpl.Lookup(BaseHeaderBlock) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHeaderBlock, t.Name)
	}
	derived, err := t.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, t.Name, err)
	}

	// The preamble goes in as a quoted string constant so delimiters in it
	// are never interpreted.
	header := LeftDelim + ` define "` + HeaderBlock + `" ` + RightDelim +
		LeftDelim + ` template "` + BaseHeaderBlock + `" . ` + RightDelim + "\n" +
		LeftDelim + " " + strconv.Quote(preamble) + " " + RightDelim +
		LeftDelim + " end " + RightDelim
	if _, err := derived.New("with_extra_preamble").Parse(header); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, t.Name, err)
	}
	return &Template{Name: t.Name + "+preamble", tmpl: derived}, nil
}

// Render executes the template for doc.
func (t *Template) Render(w io.Writer, doc Document) error {
	if err := t.tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTemplateRender, t.Name, err)
	}
	return nil
}
