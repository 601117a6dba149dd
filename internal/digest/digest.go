// Package digest renders a batch of new articles as one plain-text message.
package digest

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	Separator    = "------------------------------"
	DefaultLimit = 100
	ellipsis     = "..."
)

// Item is one article queued for delivery.
type Item struct {
	Source  string // account display name
	Title   string
	Summary string
	URL     string
	Time    string // publish time as returned by the API
}

// Formatter builds the message text. The zero value is not usable; use New.
type Formatter struct {
	header       string
	summaryLimit int
}

// New returns a formatter. An empty header or non-positive limit falls back to defaults.
func New(header string, summaryLimit int) *Formatter {
	if strings.TrimSpace(header) == "" {
		header = "📊 今日 IPO 深度日报"
	}
	if summaryLimit <= 0 {
		summaryLimit = DefaultLimit
	}
	return &Formatter{header: header, summaryLimit: summaryLimit}
}

// Format renders items under a dated header. Items keep their order.
func (f *Formatter) Format(items []Item, now time.Time) string {
	var b strings.Builder
	b.WriteString(f.header)
	b.WriteString(" (")
	b.WriteString(now.Format("01-02"))
	b.WriteString(")\n")

	for _, it := range items {
		b.WriteString(Separator)
		b.WriteByte('\n')
		b.WriteString("📌 【" + it.Source + "】\n")
		b.WriteString("📄 " + it.Title + "\n")
		b.WriteString("💡 摘要: " + f.Summary(it.Summary) + "\n")
		b.WriteString("🔗 " + it.URL + "\n")
		b.WriteString("⏰ " + it.Time + "\n")
	}
	return b.String()
}

// Summary cleans s for a single-line preview.
func (f *Formatter) Summary(s string) string {
	return Truncate(oneLine(StripHTML(s)), f.summaryLimit)
}

// StripHTML returns the text content of s when it carries real HTML markup.
// Text whose angle brackets do not form known HTML tags ("PE<PB") is kept
// as is, with entities decoded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil || !hasMarkup(doc) {
		return html.UnescapeString(s)
	}
	return doc.Text()
}

// hasMarkup reports whether the parsed input contains an element with a
// known HTML tag name. The html/head/body wrappers added by the parser are skipped.
func hasMarkup(doc *goquery.Document) bool {
	found := false
	doc.Find("head *, body *").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		n := sel.Get(0)
		if n.Type == nethtml.ElementNode && atom.Lookup([]byte(n.Data)) != 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// Truncate cuts s to limit runes, marking the cut with "...".
// Strings within the limit are returned as is.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	r := []rune(s)
	return string(r[:keep]) + ellipsis
}
