package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDoc = `{"root":{"type":"root","children":[
 {"type":"heading","tag":"h2","children":[{"type":"text","text":"Findings"}]},
 {"type":"paragraph","children":[
   {"type":"text","text":"Sleep ","format":0},
   {"type":"text","text":"matters","format":1},
   {"type":"text","text":" for ","format":0},
   {"type":"link","url":"https://example.org","children":[{"type":"text","text":"memory"}]}
 ]},
 {"type":"list","listType":"number","children":[
   {"type":"listitem","children":[{"type":"text","text":"first"}]},
   {"type":"listitem","children":[{"type":"text","text":"second"}]}
 ]}
]}}`

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDoc)

	assert.Contains(t, md, "## Findings")
	assert.Contains(t, md, "Sleep **matters** for [memory](https://example.org)")
	assert.Contains(t, md, "1. first\n2. second")
}

func TestPlainText(t *testing.T) {
	plain := PlainText(sampleDoc)

	assert.Contains(t, plain, "Findings")
	assert.Contains(t, plain, "Sleep matters for memory")
	assert.NotContains(t, plain, "**")
	assert.NotContains(t, plain, "https://example.org")
}

func TestPassthrough(t *testing.T) {
	assert.Equal(t, "just words", PlainText("just words"))
	assert.Equal(t, "# already markdown", Markdown("# already markdown"))

	broken := `{"root": {"type": `
	assert.Equal(t, broken, PlainText(broken))
	assert.False(t, IsDocument("plain"))
}

func TestCheckList(t *testing.T) {
	doc := `{"root":{"type":"root","children":[{"type":"list","listType":"check","children":[
	 {"type":"listitem","checked":true,"children":[{"type":"text","text":"done"}]},
	 {"type":"listitem","children":[{"type":"text","text":"todo"}]}]}]}}`

	assert.Equal(t, "- [x] done\n- [ ] todo", Markdown(doc))
}
