package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Half-point font sizes per heading level.
var headingSizes = [...]string{"", "36", "30", "26", "24", "22", "22"}

// ToDOCX lays a Markdown page out as a Word document: one styled paragraph
// per heading, one plain paragraph per other block.
func ToDOCX(src []byte) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	root := markdown.Parser().Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			level := min(node.Level, 6)
			para := doc.AddParagraph().Style("Heading" + strconv.Itoa(level))
			para.AddText(blockText(node, src)).Bold().Size(headingSizes[level])
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			para := doc.AddParagraph()
			para.AddText(blockText(node, src)).Font("Consolas", "", "", "cs")
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := blockText(item, src); t != "" {
					doc.AddParagraph().AddText("• " + t)
				}
			}
		default:
			if t := blockText(node, src); t != "" {
				doc.AddParagraph().AddText(t)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing docx: %w", err)
	}
	return buf.Bytes(), nil
}

// blockText gets the text content of a goldmark AST node. Code keeps its
// lines; everything else is flattened to one line.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimRight(buf.String(), "\n")
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		default:
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
