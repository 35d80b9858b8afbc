package render

import (
	"fmt"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/config"
)

// Encode converts a rendered page to format. It returns the file contents
// and the extension the file should carry. suffix is the extension of the
// rendered source pages.
func Encode(format string, node *apitree.Node, page, suffix string) ([]byte, string, error) {
	switch format {
	case config.FormatMarkdown, "":
		return []byte(page), suffix, nil
	case config.FormatHTML:
		data, err := ToHTML(node.Fullname, []byte(page), suffix)
		return data, ".html", err
	case config.FormatDOCX:
		data, err := ToDOCX([]byte(page))
		return data, ".docx", err
	}
	return nil, "", fmt.Errorf("unknown format %q", format)
}
