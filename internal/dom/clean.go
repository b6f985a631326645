package dom

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// noiseElements are removed together with their content. They never hold
// job entries and their subtrees would only add noise to fingerprints.
var noiseElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"img": true, "video": true, "audio": true, "svg": true,
	"footer": true, "nav": true, "header": true,
}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	anyElement      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9:._-]*$`)
)

var (
	cleanPolicy     *bluemonday.Policy
	cleanPolicyOnce sync.Once
)

// policy builds the attribute filter once; bluemonday policies are safe
// for concurrent use after construction. Every element is kept, with or
// without attributes, so fingerprints and anchors survive cleaning.
func policy() *bluemonday.Policy {
	cleanPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElementsMatching(anyElement)
		p.AllowNoAttrs().OnElementsMatching(anyElement)
		p.AllowAttrs("id", "class", "href").Globally()
		cleanPolicy = p
	})
	return cleanPolicy
}

// Clean strips a rendered page down to its layout skeleton. Only the body
// is kept, noise elements are removed with their content, every other
// element stays with just its id, class and href attributes, and
// whitespace runs are collapsed to a single space.
//
// The result is an HTML fragment that Parse accepts.
func Clean(rawHTML string) string {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	body := findBody(root)
	if body == nil {
		body = root
	}
	removeNoise(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return ""
	}
	sanitized := policy().Sanitize(sb.String())
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(sanitized, " "))
}

// ParseClean is shorthand for ParseString(Clean(rawHTML)).
func ParseClean(rawHTML string) (*Document, error) {
	return ParseString(Clean(rawHTML))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func removeNoise(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && noiseElements[strings.ToLower(c.Data)]:
			n.RemoveChild(c)
		default:
			removeNoise(c)
		}
		c = next
	}
}
