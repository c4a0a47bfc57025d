package parsing

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

/*
Course descriptions and lesson notes are written in markdown by instructors
and registrars. Raw HTML in the source is dropped.

Fenced code blocks are highlighted, which instructors use for transliteration
tables and Arabic text with a language hint.
*/
var CourseMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlightExtension,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func ParseMarkdown(source string, md goldmark.Markdown) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}

	return buf.String()
}

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(PortalChromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="portal-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)
