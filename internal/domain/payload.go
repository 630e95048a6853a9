package domain

import (
	"encoding/json"
	"regexp"
)

// YearMonth is a partial date as reported by the enrichment provider. A zero
// Month means the provider omitted it.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Experience is one employment interval from an enriched profile. A nil
// EndsAt means the role is ongoing.
type Experience struct {
	Company  string     `json:"company"`
	Title    string     `json:"title"`
	StartsAt *YearMonth `json:"starts_at"`
	EndsAt   *YearMonth `json:"ends_at"`
}

// ProfilePayload is the enrichment payload for a person. Raw preserves the
// provider response verbatim for storage and export.
type ProfilePayload struct {
	FullName    string          `json:"full_name"`
	Headline    string          `json:"headline"`
	Occupation  string          `json:"occupation"`
	Country     string          `json:"country_full_name"`
	Industry    string          `json:"industry"`
	Experiences []Experience    `json:"experiences"`
	Raw         json.RawMessage `json:"-"`
}

// CompanyContext is the enrichment payload for a company, used to ground
// query generation.
type CompanyContext struct {
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Industry     string   `json:"industry"`
	Description  string   `json:"description"`
	Specialities []string `json:"specialities"`
}

// SearchStrategy is one generated search query bound to a company and country.
type SearchStrategy struct {
	Company    string `json:"company"`
	CompanyURL string `json:"company_url"`
	Country    string `json:"country"`
	Query      string `json:"query"`
}

// SearchResult is one raw web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// profileURLPattern matches the public profile URL shape. Slugs shorter than
// five characters are vanity redirects or noise.
var profileURLPattern = regexp.MustCompile(`linkedin\.com/in/[a-zA-Z0-9\-_%]{5,}`)

// ValidProfileURL reports whether url has the profile-URL shape.
func ValidProfileURL(url string) bool {
	return profileURLPattern.MatchString(url)
}

// ExtractProfileURL returns the first profile-URL shaped substring of s, or
// the empty string.
func ExtractProfileURL(s string) string {
	return profileURLPattern.FindString(s)
}
