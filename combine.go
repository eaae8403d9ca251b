package nbbook

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/alnah/go-nbbook/internal/logfields"
	"github.com/alnah/go-nbbook/internal/notebook"
)

// Combined is the assembled book.
type Combined struct {
	Notebook    *notebook.Notebook
	Chapters    []Chapter
	Diagnostics []Diagnostic
}

// ChapterIDs returns the IDs of the combined chapters in order.
func (c *Combined) ChapterIDs() []string {
	return ChapterIDs(c.Chapters)
}

type combineConfig struct {
	logger *slog.Logger
}

// CombineNotebooks reads every chapter in order and concatenates them. Each
// chapter contributes its heading cell, its label cell, the rest of its first
// cell if any, then its remaining cells unchanged. The book metadata is a
// copy of the first chapter's metadata.
//
// A chapter without a heading aborts the whole run with a *NoHeaderError.
func CombineNotebooks(chapters []Chapter, opts ...CombineOption) (*Combined, error) {
	cfg := combineConfig{logger: logfields.Discard()}
	for _, opt := range opts {
		opt.applyCombine(&cfg)
	}

	combined := &Combined{
		Notebook: notebook.New(),
		Chapters: slices.Clone(chapters),
	}

	for i, ch := range chapters {
		cfg.logger.Debug("adding chapter", logfields.Chapter(ch.ID), logfields.Path(ch.Path))

		nb, err := notebook.ReadFile(ch.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadChapter, ch.Path, err)
		}

		var first *notebook.Cell
		if len(nb.Cells) > 0 {
			first = nb.Cells[0]
		}
		labeled, err := AddSectionLabel(first, ch.ID)
		if err != nil {
			var noHeader *NoHeaderError
			if errors.As(err, &noHeader) {
				noHeader.Path = ch.Path
			}
			return nil, err
		}

		for _, d := range labeled.Diagnostics {
			cfg.logger.Error(d.Message,
				slog.String("severity", d.Severity.String()),
				logfields.Chapter(ch.ID),
				logfields.Path(ch.Path))
		}
		combined.Diagnostics = append(combined.Diagnostics, labeled.Diagnostics...)

		combined.Notebook.Cells = append(combined.Notebook.Cells, labeled.Cells...)
		combined.Notebook.Cells = append(combined.Notebook.Cells, nb.Cells[1:]...)

		if i == 0 {
			combined.Notebook.Metadata = nb.Metadata.Clone()
		}
	}

	cfg.logger.Info("combined chapters", logfields.Count(len(chapters)))
	return combined, nil
}
