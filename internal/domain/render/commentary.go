package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/okian/samemean/internal/domain/catalog"
)

// Takeaway is one numbered item of the closing commentary.
type Takeaway struct {
	Number int           `json:"number"`
	Body   template.HTML `json:"body"`
}

// Quote closes the page.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

var closingQuote = Quote{
	Text:        "Never trust a statistic you didn't visualize yourself.",
	Attribution: "Adapted from Churchill",
}

var countWords = [...]string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

// countWord spells small counts out, the way the copy reads.
func countWord(n int) string {
	if n >= 0 && n < len(countWords) {
		return countWords[n]
	}
	return fmt.Sprint(n)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sharedMeanLabel is the mean every dataset has in common, e.g. "75%".
func sharedMeanLabel(datasets []catalog.Dataset) string {
	if len(datasets) == 0 {
		return ""
	}
	return formatNumber(datasets[0].Mean) + "%"
}

func introText(datasets []catalog.Dataset) string {
	return fmt.Sprintf("%s classes with identical mean scores (%s) but completely different learning patterns. "+
		"This demonstrates why averages alone are insufficient for understanding student performance.",
		capitalize(countWord(len(datasets))), sharedMeanLabel(datasets))
}

func keyQuestion(datasets []catalog.Dataset) string {
	return fmt.Sprintf("If you only knew the average score was %s, which class would you rather teach? "+
		"Click through each distribution to see why the answer isn't simple.", sharedMeanLabel(datasets))
}

// takeawaySources are markdown with {mean}, {classes} and {spread} placeholders.
var takeawaySources = []string{
	"**Averages can be misleading.** The mean score of {mean} appears identical across all {classes} classes, " +
		"but they represent completely different learning situations.",
	"**Distribution shape matters.** Normal, bimodal, and skewed distributions require different " +
		"instructional approaches and interventions.",
	"**Variability reveals important patterns.** Standard deviation ({spread}) tells you how spread out " +
		"students are, which impacts teaching strategy.",
	"**Always visualize your data.** A histogram or similar visualization reveals patterns that " +
		"summary statistics alone cannot show.",
}

// Takeaways renders the numbered commentary for the given datasets.
func Takeaways(datasets []catalog.Dataset) []Takeaway {
	sds := make([]string, len(datasets))
	for i, ds := range datasets {
		sds[i] = formatNumber(ds.SD)
	}
	fill := strings.NewReplacer(
		"{mean}", sharedMeanLabel(datasets),
		"{classes}", countWord(len(datasets)),
		"{spread}", strings.Join(sds, " vs. "),
	)

	out := make([]Takeaway, len(takeawaySources))
	for i, src := range takeawaySources {
		out[i] = Takeaway{Number: i + 1, Body: markdownHTML(fill.Replace(src))}
	}
	return out
}

// markdownHTML converts a trusted, package-owned markdown string.
// A gomarkdown parser holds per-document state, so each call gets its own.
func markdownHTML(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.HrefTargetBlank})
	out := markdown.ToHTML([]byte(src), p, r)
	return template.HTML(strings.TrimSpace(string(out))) //nolint:gosec // sources are constants in this package
}
