package doctree

import (
	"fmt"
	"sort"
	"strings"

	tp "github.com/xlab/treeprint"
)

// Dump renders the subtree rooted at n as an indented tree for debugging.
func Dump(n *Node) string {
	printer := tp.New()
	dumpNode(printer, n)
	return printer.String()
}

func dumpNode(printer tp.Tree, n *Node) {
	if len(n.Content) == 0 {
		printer.AddNode(label(n))
		return
	}
	branch := printer.AddBranch(label(n))
	for _, c := range n.Content {
		dumpNode(branch, c)
	}
}

func label(n *Node) string {
	var sb strings.Builder
	sb.WriteString(string(n.Type))
	if n.IsText() {
		fmt.Fprintf(&sb, " %q", n.Text)
		if len(n.Marks) > 0 {
			types := make([]string, len(n.Marks))
			for i, m := range n.Marks {
				types[i] = string(m.Type)
			}
			fmt.Fprintf(&sb, " [%s]", strings.Join(types, ","))
		}
		return sb.String()
	}
	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + n.Attrs[k]
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, " "))
	}
	return sb.String()
}
