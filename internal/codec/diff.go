package codec

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/diagramkit/internal/model"
)

// LineOp is the kind of a DiffLine.
type LineOp int

const (
	LineEqual LineOp = iota
	LineInsert
	LineDelete
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   LineOp
	Text string
}

// Diff computes a line diff between two encoded documents.
func Diff(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := LineEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = LineInsert
		case diffmatchpatch.DiffDelete:
			op = LineDelete
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// DiffDiagrams encodes both diagrams with c and diffs the result.
func DiffDiagrams(c Codec, a, b *model.Diagram) ([]DiffLine, error) {
	var ba, bb bytes.Buffer
	if err := c.Encode(a, &ba); err != nil {
		return nil, err
	}
	if err := c.Encode(b, &bb); err != nil {
		return nil, err
	}
	return Diff(ba.String(), bb.String()), nil
}

// Changed reports whether any line differs.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != LineEqual {
			return true
		}
	}
	return false
}
