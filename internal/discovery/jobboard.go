package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"

	"github.com/nao1215/careercrawl/internal/dom"
	"github.com/nao1215/careercrawl/internal/resolve"
)

// FindJobBoardLink returns the first anchor of doc whose text equals one of
// keywords, resolved against baseURL. The comparison uses Unicode case
// folding on the whitespace-collapsed text, so "View  Openings" matches
// "view openings".
func FindJobBoardLink(doc *dom.Document, baseURL string, keywords []string) (string, bool) {
	if len(keywords) == 0 || doc.HTMLNode() == nil {
		return "", false
	}

	fold := cases.Fold()
	want := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		want[fold.String(collapse(kw))] = struct{}{}
	}

	var found string
	goquery.NewDocumentFromNode(doc.HTMLNode()).Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, ok := want[fold.String(collapse(s.Text()))]; !ok {
			return true
		}
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if u, ok := resolve.ResolveString(href, baseURL); ok {
			found = u
			return false
		}
		return true
	})
	return found, found != ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
