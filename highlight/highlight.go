// Package highlight defines the syntax-highlighting collaborator: something
// that turns (content, language) into HTML markup. The service treats the
// engine as pluggable; Plain is the in-tree fallback that just escapes.
package highlight

import (
	"fmt"
	"html/template"
)

// Highlighter renders paste content as HTML markup for the given language
// tag.
type Highlighter interface {
	Highlight(content, language string) template.HTML
}

// Plain escapes content into a pre block tagged with the language. It does no
// actual highlighting; stylesheets and client-side highlighters key off the
// class names.
type Plain struct{}

func (Plain) Highlight(content, language string) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<pre class="highlight language-%s"><code>%s</code></pre>`,
		template.HTMLEscapeString(language),
		template.HTMLEscapeString(content),
	))
}
