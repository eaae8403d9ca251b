// Package dateutil resolves the title page date of a book.
//
// A date is either literal text, kept as is, or "auto" / "auto:FORMAT",
// which is replaced by the build date. FORMAT uses readable tokens
// (YYYY, YY, MMMM, MMM, MM, M, DD, D, dddd, ddd) or a preset name.
// Bracketed text is copied literally: "[Week of] MMMM D".
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is specified without a format.
const DefaultDateFormat = "MMMM D, YYYY"

const autoKeyword = "auto"

// layoutTokens maps readable tokens to Go layout components, longest first.
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named formats accepted after "auto:".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"full":     "dddd, MMMM D, YYYY",
	"month":    "MMMM YYYY",
}

// Layout converts a readable format into a Go time layout.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := 1
		piece := rest[:1]
		for _, tok := range layoutTokens {
			if strings.HasPrefix(rest, tok.token) {
				n, piece = len(tok.token), tok.layout
				break
			}
		}
		b.WriteString(piece)
		rest = rest[n:]
	}
	return b.String(), nil
}

// Resolve returns value unchanged unless it is "auto" or "auto:FORMAT", in
// which case now is formatted with the requested format or preset. The keyword and
// preset names are case-insensitive.
func Resolve(value string, now time.Time) (string, error) {
	keyword, format, hasFormat := strings.Cut(value, ":")
	if !strings.EqualFold(strings.TrimSpace(keyword), autoKeyword) {
		return value, nil
	}

	switch {
	case !hasFormat:
		format = DefaultDateFormat
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	default:
		if preset, ok := Presets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
