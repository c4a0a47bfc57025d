package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	t.Run("fenced code blocks", func(t *testing.T) {
		t.Run("multiple lines", func(t *testing.T) {
			html := ParseMarkdown("```\nalif ba\n\tta tha\n```", CourseMarkdown)
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="portal-code"`)
			assert.Contains(t, html, "alif ba\n\tta tha")
		})
		t.Run("multiple lines with language", func(t *testing.T) {
			html := ParseMarkdown("```go\nfunc main() {\n\tfmt.Println(\"salaam\")\n}\n```", CourseMarkdown)
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="portal-code"`)
			assert.Contains(t, html, "Println")
			assert.Contains(t, html, "salaam")
		})
	})
	t.Run("tables", func(t *testing.T) {
		html := ParseMarkdown("| Letter | Sound |\n|---|---|\n| ب | b |\n", CourseMarkdown)
		assert.Contains(t, html, "<table>")
		assert.Contains(t, html, "<td>ب</td>")
	})
	t.Run("raw html is dropped", func(t *testing.T) {
		html := ParseMarkdown("Hello <script>alert(1)</script>", CourseMarkdown)
		assert.NotContains(t, html, "<script>")
	})
}

func TestLinkify(t *testing.T) {
	t.Run("no urls", func(t *testing.T) {
		assert.Equal(t, "In person &amp; online", Linkify("In person & online"))
	})
	t.Run("one url", func(t *testing.T) {
		assert.Equal(t,
			`Live: <a href="https://meet.nurpath.academy/seerah" target="_blank" rel="noopener">https://meet.nurpath.academy/seerah</a>`,
			Linkify("Live: https://meet.nurpath.academy/seerah"),
		)
	})
	t.Run("escapes around urls", func(t *testing.T) {
		result := Linkify("<b> https://a.example/x </b>")
		assert.True(t, strings.HasPrefix(result, "&lt;b&gt; <a "))
		assert.True(t, strings.HasSuffix(result, "</a> &lt;/b&gt;"))
	})
}
