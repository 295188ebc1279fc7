// Package linkcheck verifies that intra-site links on generated pages
// resolve. Pages are rendered to HTML in memory; external links are out of
// scope here, so a broken internal target is the only finding.
package linkcheck

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/stationhq/stylebook/internal/util/sets"
)

// BrokenLink is one internal link whose target page does not exist.
type BrokenLink struct {
	Page   string // site-relative path of the page holding the link
	Target string // the link as written
	Text   string // link text, empty for non-anchor tags
}

// Verify renders each page (site-relative path → markdown content) and
// reports internal links that resolve to no other page. Findings are ordered
// by page path so reports stay stable.
func Verify(pages map[string]string) ([]BrokenLink, error) {
	known := sets.New[string]()
	paths := make([]string, 0, len(pages))
	for p := range pages {
		known.Add(path.Clean(p))
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var broken []BrokenLink
	for _, page := range paths {
		links, err := extractLinks(pages[page])
		if err != nil {
			return nil, fmt.Errorf("extract links from %s: %w", page, err)
		}
		for _, l := range links {
			target, internal := resolveInternal(page, l.href)
			if !internal {
				continue
			}
			if !known.Has(target) {
				broken = append(broken, BrokenLink{Page: page, Target: l.href, Text: l.text})
			}
		}
	}
	return broken, nil
}

type link struct {
	href string
	text string
}

// extractLinks converts markdown to HTML in memory and walks the node tree
// for anchor and image references.
func extractLinks(markdown string) ([]link, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return nil, err
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return nil, err
	}

	var links []link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := attr(n, "href"); href != "" {
					links = append(links, link{href: href, text: nodeText(n)})
				}
			case "img":
				if src := attr(n, "src"); src != "" {
					links = append(links, link{href: src, text: attr(n, "alt")})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// resolveInternal resolves a link written on page to a site-relative path.
// Absolute URLs, anchors, and special protocols are not internal.
func resolveInternal(page, href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	target := u.Path
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/")), true
	}
	return path.Clean(path.Join(path.Dir(page), target)), true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.TrimSpace(b.String())
}
