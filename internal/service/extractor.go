package service

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"policyscraper/internal/model"
	"policyscraper/internal/util/htmlutil"
)

// ExtractOptions tunes which part of a page is extracted.
type ExtractOptions struct {
	// MainContentOnly restricts extraction to the page's main content
	// container and drops navigation, header, footer and aside blocks.
	MainContentOnly bool
}

var mainContentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	".content",
	".policy-content",
	".main-content",
}

const boilerplateSelector = "nav, header, footer, aside"

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Extract parses rawHTML and returns its structured text content. Relative
// links are resolved against sourceURL. It keeps no state between calls.
// Malformed markup degrades to empty fields; an error is returned only when
// the document cannot be read at all.
func Extract(rawHTML, sourceURL string, opts ExtractOptions) (result *model.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = model.Errorf(model.EPARSE, "extraction failed: %v", r)
		}
	}()

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, model.Errorf(model.EPARSE, "failed to parse HTML: %v", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}

	result = newExtractionResult()

	body := htmlutil.FindFirst(root, "body")
	if body == nil || body.FirstChild == nil {
		return result, nil
	}

	scope := body
	if opts.MainContentOnly {
		scope = selectMainContent(root, body)
	}

	result.Title = extractPageTitle(root, scope)
	collectStructure(scope, base, &result.StructuredContent)
	result.RawText = htmlutil.VisibleText(scope)

	return result, nil
}

func newExtractionResult() *model.ExtractionResult {
	return &model.ExtractionResult{
		StructuredContent: model.StructuredContent{
			Headings:   []model.Heading{},
			Paragraphs: []string{},
			Lists:      [][]string{},
			Links:      []model.Link{},
		},
	}
}

// pick the main content container and strip page chrome from it
func selectMainContent(root, body *html.Node) *html.Node {
	doc := goquery.NewDocumentFromNode(root)

	scope := goquery.NewDocumentFromNode(body).Selection
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			scope = sel
			break
		}
	}

	scope.Find(boilerplateSelector).Remove()
	return scope.Get(0)
}

// first non-empty <h1>, then the document <title>, then any other heading
func extractPageTitle(root, scope *html.Node) string {
	if title := firstElementText(scope, "h1"); title != "" {
		return title
	}
	if head := htmlutil.FindFirst(root, "head"); head != nil {
		if title := firstElementText(head, "title"); title != "" {
			return title
		}
	}
	return firstElementText(scope, headingTags...)
}

func firstElementText(node *html.Node, tags ...string) string {
	var text string
	htmlutil.Walk(node, func(n *html.Node) bool {
		if text != "" {
			return false
		}
		if htmlutil.IsElement(n, tags...) {
			text = htmlutil.VisibleText(n)
		}
		return true
	})
	return text
}

// walk the content in document order collecting headings, paragraphs, lists and links
func collectStructure(scope *html.Node, base *url.URL, out *model.StructuredContent) {
	htmlutil.Walk(scope, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := htmlutil.VisibleText(n); text != "" {
				out.Headings = append(out.Headings, model.Heading{
					Level: int(n.Data[1] - '0'),
					Text:  text,
					Tag:   n.Data,
				})
			}
		case "p":
			if text := htmlutil.VisibleText(n); text != "" {
				out.Paragraphs = append(out.Paragraphs, text)
			}
		case "ul", "ol":
			if items := listItems(n); len(items) > 0 {
				out.Lists = append(out.Lists, items)
			}
		case "a":
			if link, ok := extractAnchor(n, base); ok {
				out.Links = append(out.Links, link)
			}
		case "script", "style", "noscript", "template":
			return false
		}
		return true
	})
}

// texts of the direct <li> children; nested lists are reported on their own
func listItems(list *html.Node) []string {
	var items []string
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if !htmlutil.IsElement(c, "li") {
			continue
		}
		if text := htmlutil.VisibleTextSkipping(c, "ul", "ol"); text != "" {
			items = append(items, text)
		}
	}
	return items
}

func extractAnchor(node *html.Node, base *url.URL) (model.Link, bool) {
	href := strings.TrimSpace(htmlutil.GetAttr(node, "href"))
	if href == "" {
		return model.Link{}, false
	}

	text := htmlutil.VisibleText(node)
	if text == "" {
		text = href
	}

	return model.Link{
		Text: text,
		Href: htmlutil.ResolveURL(base, href),
	}, true
}
