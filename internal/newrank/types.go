package newrank

import "fmt"

// Placeholders used when the API omits a field.
const (
	NoTitle   = "无标题"
	NoSummary = "无摘要"
)

// Target is one tracked account.
type Target struct {
	Name    string // display name used in the digest
	Account string // newrank account id (e.g. "gh_b2c2ad92da3f")
}

// Article is one item of the articles_content response.
type Article struct {
	Title      string
	Summary    string
	URL        string
	PublicTime string
}

// APIError is returned when the API answers with a non-zero code.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newrank: code %d: %s", e.Code, e.Msg)
}

type response struct {
	Code *int         `json:"code"`
	Msg  string       `json:"msg"`
	Data []rawArticle `json:"data"`
}

type rawArticle struct {
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
	URL        *string `json:"url"`
	PublicTime *string `json:"publicTime"`
}

func (r rawArticle) article() Article {
	return Article{
		Title:      strOr(r.Title, NoTitle),
		Summary:    strOr(r.Summary, NoSummary),
		URL:        strOr(r.URL, ""),
		PublicTime: strOr(r.PublicTime, ""),
	}
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
