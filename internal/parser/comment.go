package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// comment returns the run of documentation comments right before n. The run
// ends at a blank line, at a plain comment and at a comment that trails the
// previous declaration on its line.
func (b *binding) comment(n *sitter.Node) string {
	var parts []string
	next := n
	for prev := n.PrevSibling(); prev != nil && prev.Type() == nodeComment; prev = prev.PrevSibling() {
		if prev.EndPoint().Row+1 < next.StartPoint().Row {
			break
		}
		if before := prev.PrevSibling(); before != nil && before.IsNamed() &&
			before.Type() != nodeComment && before.EndPoint().Row == prev.StartPoint().Row {
			break
		}
		text := b.text(prev)
		if !isDocComment(text) {
			break
		}
		parts = append(parts, strings.TrimRight(text, " \t\r\n"))
		next = prev
	}

	if len(parts) == 0 {
		return ""
	}
	// Collected backwards.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "\n")
}

// isDocComment reports whether text is a ///, //!, /** or /*! comment that
// documents what follows it.
func isDocComment(text string) bool {
	switch {
	case strings.HasPrefix(text, "///"):
		return !strings.HasPrefix(text, "////") && !strings.HasPrefix(text, "///<")
	case strings.HasPrefix(text, "//!"):
		return !strings.HasPrefix(text, "//!<")
	case strings.HasPrefix(text, "/**"):
		return text != "/**/" && !strings.HasPrefix(text, "/***") && !strings.HasPrefix(text, "/**<")
	case strings.HasPrefix(text, "/*!"):
		return !strings.HasPrefix(text, "/*!<")
	}
	return false
}
