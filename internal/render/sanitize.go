// Package render prepares message HTML bodies for safe display.
package render

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vanng822/go-premailer/premailer"
)

// minSanitized is the length below which sanitized output is treated
// as destroyed, triggering the plain-text fallback.
const minSanitized = 10

// policy keeps a safe markup subset while preserving the class and
// style attributes the inlined CSS needs to still render. Relative
// URLs are denied and URL schemes are restricted, so javascript: and
// friends are neutralized along with script tags.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").Globally()
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("mailto", "http", "https")
	return p
}()

// Safe inlines declared CSS into element style attributes and strips
// the result down to a safe markup subset. Remote stylesheets are
// never fetched; the whole pipeline is CPU-only. If sanitization
// leaves almost nothing, the plain-text body is returned instead,
// escaped for display. The caller always gets some string, never an
// error, and the same input always yields the same output.
func Safe(rawHTML, textFallback string) string {
	inlined := inlineCSS(rawHTML)
	clean := policy.Sanitize(inlined)

	if len(clean) < minSanitized {
		return html.EscapeString(textFallback)
	}
	return clean
}

// inlineCSS moves <style>-declared rules into element style
// attributes. Inlining failures fall through to sanitizing the
// original markup rather than failing the read.
func inlineCSS(rawHTML string) string {
	prem, err := premailer.NewPremailerFromString(rawHTML, premailer.NewOptions())
	if err != nil {
		return rawHTML
	}
	inlined, err := prem.Transform()
	if err != nil {
		return rawHTML
	}
	return inlined
}
