package pipeline

import (
	"slices"

	"github.com/alnah/go-nbbook/internal/notebook"
)

// Default removal tags.
const (
	TagHidden       = "hidden"
	TagRemoveCell   = "remove_cell"
	TagRemoveOutput = "remove_output"
	TagRemoveInput  = "remove_input"
)

// TagPolicy selects which tagged content is left out of the export.
type TagPolicy struct {
	RemoveCellTags         []string // drop the whole cell
	RemoveAllOutputsTags   []string // drop every output, keep the source
	RemoveInputTags        []string // hide the source, keep outputs
	RemoveSingleOutputTags []string // matched against output metadata tags
}

// DefaultTagPolicy returns the removal tags used when none are configured.
func DefaultTagPolicy() TagPolicy {
	return TagPolicy{
		RemoveCellTags:         []string{TagHidden, TagRemoveCell},
		RemoveAllOutputsTags:   []string{TagHidden, TagRemoveOutput},
		RemoveInputTags:        []string{TagHidden, TagRemoveInput},
		RemoveSingleOutputTags: []string{},
	}
}

// CellAction is the outcome of classifying one cell.
type CellAction struct {
	RemoveCell    bool
	RemoveInput   bool
	RemoveOutputs bool
}

// Classify reports what the policy does to a cell with the given tags.
// Cell removal wins; input and output removal are independent.
func (p TagPolicy) Classify(tags []string) CellAction {
	if intersects(tags, p.RemoveCellTags) {
		return CellAction{RemoveCell: true}
	}
	return CellAction{
		RemoveInput:   intersects(tags, p.RemoveInputTags),
		RemoveOutputs: intersects(tags, p.RemoveAllOutputsTags),
	}
}

// Apply returns a filtered deep copy of nb. The input is not modified.
func (p TagPolicy) Apply(nb *notebook.Notebook) *notebook.Notebook {
	out := nb.Clone()
	cells := out.Cells[:0]
	for _, c := range out.Cells {
		action := p.Classify(c.Tags())
		if action.RemoveCell {
			continue
		}
		if action.RemoveInput {
			c.Transient.RemoveSource = true
		}
		switch {
		case action.RemoveOutputs:
			if c.Outputs != nil {
				c.Outputs = []notebook.Output{}
			}
		case len(p.RemoveSingleOutputTags) > 0 && len(c.Outputs) > 0:
			kept := c.Outputs[:0]
			for _, o := range c.Outputs {
				if !intersects(o.Metadata.Tags(), p.RemoveSingleOutputTags) {
					kept = append(kept, o)
				}
			}
			c.Outputs = kept
		}
		cells = append(cells, c)
	}
	out.Cells = cells
	return out
}

// Name implements Preprocessor.
func (p TagPolicy) Name() string { return "tag_remove" }

// Preprocess implements Preprocessor.
func (p TagPolicy) Preprocess(nb *notebook.Notebook) (*notebook.Notebook, error) {
	return p.Apply(nb), nil
}

func intersects(tags, set []string) bool {
	for _, t := range tags {
		if slices.Contains(set, t) {
			return true
		}
	}
	return false
}
