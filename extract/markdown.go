package extract

import (
	"bytes"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// mdConverter is reusable and goroutine-safe; built once.
var (
	mdConverter     *converter.Converter
	mdConverterOnce sync.Once
)

func markdownConverter() *converter.Converter {
	mdConverterOnce.Do(func() {
		mdConverter = converter.NewConverter(
			converter.WithPlugins(
				// base strips script/style/head noise; the table plugin is
				// what turns staff-directory tables into pipe rows the
				// tabular patterns match on.
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		)
	})
	return mdConverter
}

// NormalizeHTML converts rendered HTML to Markdown so the tabular and prose
// patterns see a uniform text shape. When conversion fails it falls back to
// visible-text extraction, which still feeds the prose patterns.
func NormalizeHTML(rawHTML, domain string) string {
	md, err := markdownConverter().ConvertString(rawHTML, converter.WithDomain(domain))
	if err != nil || strings.TrimSpace(md) == "" {
		return VisibleText(rawHTML)
	}
	return md
}

// VisibleText extracts the visible text from within <body>, stripping all
// tags and <script>/<style> content.
func VisibleText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var buf bytes.Buffer
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript", "head":
				skipDepth++
			case "br", "p", "div", "tr", "li", "h1", "h2", "h3", "h4":
				buf.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript", "head":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
