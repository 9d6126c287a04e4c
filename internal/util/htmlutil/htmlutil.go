package htmlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// elements whose boundaries separate words in rendered text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"caption": true, "dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"option": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// elements whose text is never rendered
var hiddenElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// VisibleText returns the rendered text inside node with whitespace collapsed.
// Block-level boundaries separate words; inline markup does not.
func VisibleText(node *html.Node) string {
	return VisibleTextSkipping(node)
}

// VisibleTextSkipping is VisibleText without the text of descendant elements
// named in skip.
func VisibleTextSkipping(node *html.Node, skip ...string) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			if hiddenElements[n.Data] || (n != node && IsElement(n, skip...)) {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
		if block {
			sb.WriteByte(' ')
		}
	}
	traverse(node)
	return CollapseWhitespace(sb.String())
}

// CollapseWhitespace turns every run of whitespace into a single space and
// trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsElement reports whether node is an element with one of the given tag names.
func IsElement(node *html.Node, tags ...string) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if node.Data == t {
			return true
		}
	}
	return false
}

// GetAttr finds and returns the named attribute. If it is missing, it returns
// an empty string.
func GetAttr(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// FindFirst returns the first element with the given tag in document order.
func FindFirst(node *html.Node, tag string) *html.Node {
	if IsElement(node, tag) {
		return node
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits node and its descendants in document order. Returning false from
// visit skips the children of that node.
func Walk(node *html.Node, visit func(*html.Node) bool) {
	if !visit(node) {
		return
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// ResolveURL resolves href against base. Hrefs that do not parse are returned
// unchanged.
func ResolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
