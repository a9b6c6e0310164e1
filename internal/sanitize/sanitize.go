// Package sanitize cleans editor-supplied text before the data service stores
// it. Short fields are reduced to plain text; long-form lore keeps a small
// set of formatting tags so the viewer can render paragraphs and emphasis.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	lorePolicy     *bluemonday.Policy
	lorePolicyOnce sync.Once

	strictPolicy     *bluemonday.Policy
	strictPolicyOnce sync.Once
)

// getLorePolicy returns the shared policy for long-form text.
func getLorePolicy() *bluemonday.Policy {
	lorePolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "br", "em", "strong", "i", "b", "blockquote", "ul", "ol", "li", "h3", "h4")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		lorePolicy = p
	})
	return lorePolicy
}

func getStrictPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Lore sanitizes long-form text (lore, biographies). Script tags, event
// handlers and javascript: URLs are removed; basic formatting survives.
func Lore(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(getLorePolicy().Sanitize(input))
}

// Text strips all markup from a short field and trims surrounding space.
// bluemonday escapes the remaining text; Text undoes that for the five
// entities it introduces so stored names read naturally.
func Text(input string) string {
	if input == "" {
		return ""
	}
	out := getStrictPolicy().Sanitize(input)
	out = htmlUnescaper.Replace(out)
	return strings.TrimSpace(out)
}

var htmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
)
