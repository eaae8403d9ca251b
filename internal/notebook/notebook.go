// Package notebook models Jupyter notebooks (nbformat 4): cells, outputs and
// metadata, plus the JSON encoding used on disk.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Cell types.
const (
	CellMarkdown = "markdown"
	CellRaw      = "raw"
	CellCode     = "code"
)

// Output types.
const (
	OutputStream        = "stream"
	OutputDisplayData   = "display_data"
	OutputExecuteResult = "execute_result"
	OutputError         = "error"
)

// Format version written by New and accepted by Read.
const (
	FormatMajor = 4
	FormatMinor = 5
)

// MimeLaTeX is the raw_mimetype marking a raw cell as LaTeX.
const MimeLaTeX = "text/latex"

// ErrInvalidText indicates a multi-line field that is neither a string nor a list of strings.
var ErrInvalidText = errors.New("expected string or list of strings")

// Metadata is a free-form JSON object attached to notebooks, cells and outputs.
type Metadata map[string]any

// Tags returns the "tags" entry as strings. Non-string entries are skipped.
func (m Metadata) Tags() []string {
	switch v := m["tags"].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	}
	return nil
}

// String returns the string value stored under key, or "".
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Clone returns a deep copy. A nil Metadata clones to an empty one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Text is a multi-line string. On disk nbformat stores it either as one
// string or as a list of lines that must be concatenated.
type Text string

// UnmarshalJSON accepts both encodings.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return ErrInvalidText
	}
	*t = Text(strings.Join(lines, ""))
	return nil
}

// MimeBundle maps MIME types to their payload.
type MimeBundle map[string]json.RawMessage

// Get returns the payload for mime as text. String and list-of-lines payloads
// are decoded; JSON objects are returned in their raw encoding.
func (b MimeBundle) Get(mime string) (string, bool) {
	raw, ok := b[mime]
	if !ok {
		return "", false
	}
	var t Text
	if err := t.UnmarshalJSON(raw); err == nil {
		return string(t), true
	}
	return string(raw), true
}

// Set stores value as a JSON string payload.
func (b MimeBundle) Set(mime, value string) {
	raw, _ := json.Marshal(value)
	b[mime] = raw
}

// Output is one entry of a code cell's outputs.
type Output struct {
	OutputType     string     `json:"output_type"`
	Name           string     `json:"name,omitempty"`
	Text           Text       `json:"text,omitempty"`
	Data           MimeBundle `json:"data,omitempty"`
	Metadata       Metadata   `json:"metadata,omitempty"`
	ExecutionCount *int       `json:"execution_count,omitempty"`
	EName          string     `json:"ename,omitempty"`
	EValue         string     `json:"evalue,omitempty"`
	Traceback      []string   `json:"traceback,omitempty"`
}

// Transient holds per-export rendering state. It is never serialized.
type Transient struct {
	RemoveSource bool
}

// Cell is a single content unit of a notebook.
type Cell struct {
	CellType       string
	ID             string
	Metadata       Metadata
	Source         string
	Outputs        []Output
	ExecutionCount *int
	Attachments    map[string]MimeBundle
	Transient      Transient
}

type cellJSON struct {
	CellType       string                `json:"cell_type"`
	ID             string                `json:"id,omitempty"`
	Metadata       Metadata              `json:"metadata"`
	Source         Text                  `json:"source"`
	Attachments    map[string]MimeBundle `json:"attachments,omitempty"`
	Outputs        *[]Output             `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage       `json:"execution_count,omitempty"`
}

// MarshalJSON writes the nbformat 4 shape: code cells always carry outputs
// and execution_count, other cell types never do.
func (c *Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{
		CellType:    c.CellType,
		ID:          c.ID,
		Metadata:    c.Metadata,
		Source:      Text(c.Source),
		Attachments: c.Attachments,
	}
	if out.Metadata == nil {
		out.Metadata = Metadata{}
	}
	if c.CellType == CellCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []Output{}
		}
		out.Outputs = &outputs
		out.ExecutionCount = json.RawMessage("null")
		if c.ExecutionCount != nil {
			out.ExecutionCount = json.RawMessage(fmt.Sprint(*c.ExecutionCount))
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a cell in nbformat 4 shape.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var in cellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Cell{
		CellType:    in.CellType,
		ID:          in.ID,
		Metadata:    in.Metadata,
		Source:      string(in.Source),
		Attachments: in.Attachments,
	}
	if c.Metadata == nil {
		c.Metadata = Metadata{}
	}
	if in.Outputs != nil {
		c.Outputs = *in.Outputs
	}
	if len(in.ExecutionCount) > 0 && string(in.ExecutionCount) != "null" {
		var n int
		if err := json.Unmarshal(in.ExecutionCount, &n); err != nil {
			return fmt.Errorf("execution_count: %w", err)
		}
		c.ExecutionCount = &n
	}
	return nil
}

// Tags returns the cell's metadata tags.
func (c *Cell) Tags() []string {
	return c.Metadata.Tags()
}

// Clone returns a deep copy of the cell.
func (c *Cell) Clone() *Cell {
	out := *c
	out.Metadata = c.Metadata.Clone()
	if c.Outputs != nil {
		out.Outputs = make([]Output, len(c.Outputs))
		for i, o := range c.Outputs {
			out.Outputs[i] = o.clone()
		}
	}
	if c.ExecutionCount != nil {
		n := *c.ExecutionCount
		out.ExecutionCount = &n
	}
	if c.Attachments != nil {
		out.Attachments = make(map[string]MimeBundle, len(c.Attachments))
		for name, b := range c.Attachments {
			out.Attachments[name] = b.clone()
		}
	}
	return &out
}

func (o Output) clone() Output {
	out := o
	out.Data = o.Data.clone()
	if o.Metadata != nil {
		out.Metadata = o.Metadata.Clone()
	}
	if o.ExecutionCount != nil {
		n := *o.ExecutionCount
		out.ExecutionCount = &n
	}
	out.Traceback = append([]string(nil), o.Traceback...)
	return out
}

func (b MimeBundle) clone() MimeBundle {
	if b == nil {
		return nil
	}
	out := make(MimeBundle, len(b))
	for k, v := range b {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Notebook is an ordered sequence of cells plus document-level metadata.
type Notebook struct {
	Cells         []*Cell  `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// New returns an empty nbformat 4 notebook.
func New() *Notebook {
	return &Notebook{
		Cells:         []*Cell{},
		Metadata:      Metadata{},
		NBFormat:      FormatMajor,
		NBFormatMinor: FormatMinor,
	}
}

// Clone returns a deep copy of the notebook.
func (nb *Notebook) Clone() *Notebook {
	out := &Notebook{
		Cells:         make([]*Cell, len(nb.Cells)),
		Metadata:      nb.Metadata.Clone(),
		NBFormat:      nb.NBFormat,
		NBFormatMinor: nb.NBFormatMinor,
	}
	for i, c := range nb.Cells {
		out.Cells[i] = c.Clone()
	}
	return out
}

// Language returns the kernel language recorded in the notebook metadata,
// or "" when none is recorded.
func (nb *Notebook) Language() string {
	if info, ok := nb.Metadata["language_info"].(map[string]any); ok {
		if name, ok := info["name"].(string); ok && name != "" {
			return name
		}
	}
	if spec, ok := nb.Metadata["kernelspec"].(map[string]any); ok {
		if lang, ok := spec["language"].(string); ok {
			return lang
		}
	}
	return ""
}

// NewMarkdownCell returns a markdown cell with empty metadata.
func NewMarkdownCell(source string) *Cell {
	return &Cell{CellType: CellMarkdown, Metadata: Metadata{}, Source: source}
}

// NewRawCell returns a raw cell tagged with the given raw_mimetype.
func NewRawCell(source, mimetype string) *Cell {
	return &Cell{
		CellType: CellRaw,
		Metadata: Metadata{"raw_mimetype": mimetype},
		Source:   source,
	}
}

// NewCodeCell returns a code cell without outputs.
func NewCodeCell(source string) *Cell {
	return &Cell{CellType: CellCode, Metadata: Metadata{}, Source: source}
}

// cloneValue deep-copies JSON-shaped values. YAML decoders may produce
// map[any]any; those are converted to map[string]any so the result stays
// JSON-encodable.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Metadata:
		return val.Clone()
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
