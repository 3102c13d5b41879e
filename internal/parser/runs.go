package parser

import (
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
)

// mergeRuns joins adjacent text runs carrying identical marks.
func mergeRuns(nodes []*doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, n := range nodes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && n.IsText() && sameMarks(last.Marks, n.Marks) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func sameMarks(a, b []doctree.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !attrsEqual(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b doctree.Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// plainText concatenates the text of inline runs.
func plainText(nodes []*doctree.Node) string {
	var buf strings.Builder
	for _, n := range nodes {
		buf.WriteString(n.Text)
	}
	return buf.String()
}
