package richtext

import (
	"encoding/json"
	"fmt"
	"strings"
)

type renderer struct {
	markdown bool
	sb       strings.Builder
}

// IsDocument reports whether content looks like a serialized editor tree.
func IsDocument(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), `{"root":`)
}

func parse(content string) (*document, bool) {
	if !IsDocument(content) {
		return nil, false
	}
	var doc document
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

// Markdown renders an editor tree as Markdown. Anything that is not an editor
// tree is returned unchanged.
func Markdown(content string) string {
	doc, ok := parse(content)
	if !ok {
		return content
	}
	r := &renderer{markdown: true}
	r.block(doc.Root, 0)
	return strings.TrimSpace(r.sb.String())
}

// PlainText renders an editor tree without any markup. Plain strings are
// returned unchanged.
func PlainText(content string) string {
	doc, ok := parse(content)
	if !ok {
		return content
	}
	r := &renderer{}
	r.block(doc.Root, 0)
	return strings.TrimSpace(r.sb.String())
}

func (r *renderer) block(n node, depth int) {
	switch n.Type {
	case "root":
		for _, child := range n.Children {
			r.block(child, depth)
		}
	case "paragraph", "quote":
		if r.markdown && n.Type == "quote" {
			r.sb.WriteString("> ")
		}
		r.inlines(n.Children)
		r.sb.WriteString("\n\n")
	case "heading":
		if r.markdown {
			level := 1
			if len(n.Tag) == 2 && n.Tag[0] == 'h' && n.Tag[1] >= '1' && n.Tag[1] <= '6' {
				level = int(n.Tag[1] - '0')
			}
			r.sb.WriteString(strings.Repeat("#", level) + " ")
		}
		r.inlines(n.Children)
		r.sb.WriteString("\n\n")
	case "list":
		r.list(n, depth)
		if depth == 0 {
			r.sb.WriteString("\n")
		}
	case "horizontalrule":
		if r.markdown {
			r.sb.WriteString("---\n\n")
		}
	default:
		r.inlines(n.Children)
		if n.Text != "" {
			r.inline(n)
		}
	}
}

func (r *renderer) list(n node, depth int) {
	index := 1
	if n.Start > 0 {
		index = n.Start
	}
	for _, item := range n.Children {
		if item.Type != "listitem" {
			continue
		}
		if r.markdown {
			r.sb.WriteString(strings.Repeat("  ", depth))
			switch n.ListType {
			case "number":
				r.sb.WriteString(fmt.Sprintf("%d. ", index))
				index++
			case "check":
				if item.Checked {
					r.sb.WriteString("- [x] ")
				} else {
					r.sb.WriteString("- [ ] ")
				}
			default:
				r.sb.WriteString("- ")
			}
		}
		var nested []node
		for _, child := range item.Children {
			if child.Type == "list" {
				nested = append(nested, child)
				continue
			}
			r.inline(child)
		}
		r.sb.WriteString("\n")
		for _, sub := range nested {
			r.list(sub, depth+1)
		}
	}
}

func (r *renderer) inlines(children []node) {
	for _, child := range children {
		r.inline(child)
	}
}

func (r *renderer) inline(n node) {
	switch n.Type {
	case "text", "":
		r.text(n)
	case "linebreak":
		r.sb.WriteString("\n")
	case "link", "autolink":
		if !r.markdown {
			r.inlines(n.Children)
			return
		}
		r.sb.WriteString("[")
		r.inlines(n.Children)
		r.sb.WriteString("](" + n.URL + ")")
	default:
		r.inlines(n.Children)
	}
}

func (r *renderer) text(n node) {
	if !r.markdown {
		r.sb.WriteString(n.Text)
		return
	}
	bits := n.formatBits()
	var open, closing []string
	if bits&formatCode != 0 {
		open, closing = append(open, "`"), append([]string{"`"}, closing...)
	}
	if bits&formatBold != 0 {
		open, closing = append(open, "**"), append([]string{"**"}, closing...)
	}
	if bits&formatItalic != 0 {
		open, closing = append(open, "_"), append([]string{"_"}, closing...)
	}
	if bits&formatStrike != 0 {
		open, closing = append(open, "~~"), append([]string{"~~"}, closing...)
	}
	r.sb.WriteString(strings.Join(open, ""))
	r.sb.WriteString(n.Text)
	r.sb.WriteString(strings.Join(closing, ""))
}
