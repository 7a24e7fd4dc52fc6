package html

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// invisible lists elements whose text never renders.
const invisible = "script, style, noscript, svg, template, iframe, head"

// Normalise parses an HTML document and returns its visible text with
// whitespace collapsed.
func Normalise(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", domain.ErrExtraction, err)
	}

	doc.Find(invisible).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	for _, n := range root.Nodes {
		collectText(n, &parts)
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

// collectText appends every text node under n in document order.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
