// Package richtext flattens editor JSON documents (Lexical-style trees) stored
// in note, analysis and draft content into Markdown or plain text.
package richtext

type document struct {
	Root node `json:"root"`
}

type node struct {
	Type     string `json:"type"`
	Children []node `json:"children,omitempty"`

	Text   string      `json:"text,omitempty"`
	Format interface{} `json:"format,omitempty"` // int bitmask on text, alignment string on blocks

	URL string `json:"url,omitempty"`

	Tag      string `json:"tag,omitempty"`      // h1..h6 on headings
	ListType string `json:"listType,omitempty"` // bullet, number, check
	Start    int    `json:"start,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
}

const (
	formatBold   = 1
	formatItalic = 2
	formatStrike = 4
	formatCode   = 16
)

func (n node) formatBits() int {
	switch f := n.Format.(type) {
	case float64:
		return int(f)
	case int:
		return f
	}
	return 0
}
