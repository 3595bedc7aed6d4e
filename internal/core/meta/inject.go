package meta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Inject upserts the record's fields into the document head and returns the
// rewritten HTML. Existing tags are updated in place rather than duplicated,
// so re-rendering a URL with fresh metadata always leaves exactly one tag per
// field. A nil record or unparseable document returns the input unchanged.
func Inject(html string, rec *Record) string {
	if rec == nil {
		return html
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	if rec.Title != "" {
		title := doc.Find("head title")
		if title.Length() == 0 {
			doc.Find("head").AppendHtml("<title></title>")
			title = doc.Find("head title")
		}
		title.SetText(rec.Title)
	}

	if rec.Description != "" {
		upsertTag(doc, "name", "description", rec.Description)
	}
	for _, k := range sortedKeys(rec.OG) {
		upsertTag(doc, "property", "og:"+k, rec.OG[k])
	}
	for _, k := range sortedKeys(rec.Twitter) {
		upsertTag(doc, "name", "twitter:"+k, rec.Twitter[k])
	}

	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}

func upsertTag(doc *goquery.Document, attr, key, content string) {
	sel := doc.Find(fmt.Sprintf("head meta[%s='%s']", attr, key))
	if sel.Length() == 0 {
		doc.Find("head").AppendHtml(fmt.Sprintf("<meta %s=%q>", attr, key))
		sel = doc.Find(fmt.Sprintf("head meta[%s='%s']", attr, key))
	}
	sel.SetAttr("content", content)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
