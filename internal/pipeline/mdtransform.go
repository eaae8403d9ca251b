package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Math placeholders use Unicode Private Use Area characters. They pass
// through the markdown parser as plain text and are swapped back for the
// original TeX once the fragment has been rendered.
const (
	MathStartPlaceholder = "\uE000"
	MathEndPlaceholder   = "\uE001"
)

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	mathPlaceholder = regexp.MustCompile("\uE000([0-9]+)\uE001")

	// \begin{env} at the current position
	beginEnv = regexp.MustCompile(`^\\begin\{([A-Za-z]+\*?)\}`)

	// Fenced code block delimiter (backticks or tildes), up to 3 spaces indent
	fencedCodeBlock = regexp.MustCompile("^ {0,3}(```|~~~)")
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// Normalize converts line endings and composes Unicode to NFC, which TeX
// engines handle more reliably than decomposed sequences.
func Normalize(content string) string {
	return norm.NFC.String(NormalizeLineEndings(content))
}

// NormalizeFilter is the "normalize" stage of the markdown filter chain.
func NormalizeFilter() TextFilter {
	return Pure("normalize", Normalize)
}

// MathSpans holds the TeX fragments replaced by ProtectMath, indexed by
// placeholder number.
type MathSpans []string

// ProtectMath replaces TeX math ($…$, $$…$$, \(…\), \[…\]) and
// \begin{env}…\end{env} blocks with placeholders so the markdown parser
// cannot treat underscores or asterisks inside them as emphasis. Fenced code
// blocks and code spans are left untouched.
func ProtectMath(content string) (string, MathSpans) {
	var (
		out   strings.Builder
		spans MathSpans
	)
	out.Grow(len(content))

	keep := func(span string) {
		out.WriteString(MathStartPlaceholder)
		out.WriteString(strconv.Itoa(len(spans)))
		out.WriteString(MathEndPlaceholder)
		spans = append(spans, span)
	}

	inFence := false
	i := 0
	for i < len(content) {
		if i == 0 || content[i-1] == '\n' {
			line := content[i:]
			if nl := strings.IndexByte(line, '\n'); nl >= 0 {
				line = line[:nl+1]
			}
			if fencedCodeBlock.MatchString(line) {
				inFence = !inFence
			}
			if inFence || fencedCodeBlock.MatchString(line) {
				out.WriteString(line)
				i += len(line)
				continue
			}
		}

		rest := content[i:]
		switch {
		case strings.HasPrefix(rest, `\$`):
			out.WriteString(`\$`)
			i += 2
		case rest[0] == '`':
			n := len(rest) - len(strings.TrimLeft(rest, "`"))
			end := closingBackticks(rest, n)
			if end < 0 {
				out.WriteString(rest[:n])
				i += n
				continue
			}
			out.WriteString(rest[:end])
			i += end
		case strings.HasPrefix(rest, "$$"):
			end := strings.Index(rest[2:], "$$")
			if end < 0 {
				out.WriteString("$$")
				i += 2
				continue
			}
			keep(rest[:end+4])
			i += end + 4
		case rest[0] == '$':
			end := inlineMathEnd(rest)
			if end < 0 {
				out.WriteByte('$')
				i++
				continue
			}
			keep(rest[:end])
			i += end
		case strings.HasPrefix(rest, `\(`), strings.HasPrefix(rest, `\[`):
			closer := `\)`
			if rest[1] == '[' {
				closer = `\]`
			}
			end := strings.Index(rest[2:], closer)
			if end < 0 {
				out.WriteString(rest[:2])
				i += 2
				continue
			}
			keep(rest[:end+4])
			i += end + 4
		case strings.HasPrefix(rest, `\begin{`):
			m := beginEnv.FindStringSubmatch(rest)
			if m == nil {
				out.WriteString(`\begin{`)
				i += len(`\begin{`)
				continue
			}
			closer := `\end{` + m[1] + `}`
			end := strings.Index(rest, closer)
			if end < 0 {
				out.WriteString(m[0])
				i += len(m[0])
				continue
			}
			keep(rest[:end+len(closer)])
			i += end + len(closer)
		default:
			out.WriteByte(content[i])
			i++
		}
	}

	return out.String(), spans
}

// Restore swaps placeholders back for the original TeX.
func (m MathSpans) Restore(content string) string {
	if len(m) == 0 {
		return content
	}
	return mathPlaceholder.ReplaceAllStringFunc(content, func(ph string) string {
		idx, err := strconv.Atoi(ph[len(MathStartPlaceholder) : len(ph)-len(MathEndPlaceholder)])
		if err != nil || idx >= len(m) {
			return ph
		}
		return m[idx]
	})
}

// closingBackticks returns the end offset of a code span opened by n
// backticks at the start of s, or -1 when the span is never closed.
func closingBackticks(s string, n int) int {
	i := n
	for i < len(s) {
		j := strings.IndexByte(s[i:], '`')
		if j < 0 {
			return -1
		}
		start := i + j
		run := len(s[start:]) - len(strings.TrimLeft(s[start:], "`"))
		if run == n {
			return start + run
		}
		i = start + run
	}
	return -1
}

// inlineMathEnd applies the pandoc tex_math_dollars rules to a string
// starting with '$': the opening dollar must be followed by a non-space, the
// closing one preceded by a non-space and not followed by a digit. Inline
// math never spans a blank line. Returns the end offset or -1.
func inlineMathEnd(s string) int {
	if len(s) < 3 || s[1] == ' ' || s[1] == '\t' || s[1] == '\n' {
		return -1
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\n':
			if i+1 < len(s) && s[i+1] == '\n' {
				return -1
			}
		case '$':
			prev := s[i-1]
			if prev == ' ' || prev == '\t' || prev == '\n' {
				return -1
			}
			if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				return -1
			}
			return i + 1
		}
	}
	return -1
}
