package delivery

import "github.com/microcosm-cc/bluemonday"

// Rich-text values arrive as HTML authored in the CMS. The UGC policy
// strips scripts and event handlers while keeping the structural markup the
// downstream embedding pass needs; object elements carrying data-* linked
// item markers are allowed explicitly.
var richTextPolicy = newRichTextPolicy()

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("object", "figure", "figcaption")
	p.AllowAttrs("type", "data-type", "data-codename", "data-rel").OnElements("object")
	p.AllowAttrs("data-asset-id", "data-image-id").OnElements("img", "figure")
	return p
}

// SanitizeRichText strips unsafe markup from a rich-text HTML value.
func SanitizeRichText(html string) string {
	return richTextPolicy.Sanitize(html)
}
