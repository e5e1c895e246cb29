// Package domain defines the core types for the findings service
package domain

import "time"

// Category classifies a domain's observed purpose
type Category string

// Finding categories; values match the finding_category enum in Postgres
const (
	CategoryMalicious    Category = "malicious"
	CategoryAdultContent Category = "adult_content"
	CategoryGambling     Category = "gambling"
	CategoryDating       Category = "dating"
	CategoryIllegal      Category = "illegal_content"
	CategorySuspicious   Category = "suspicious"
	CategoryBenign       Category = "benign"
)

// AllCategories lists every valid category in severity-ish order
func AllCategories() []Category {
	return []Category{
		CategoryMalicious,
		CategoryAdultContent,
		CategoryGambling,
		CategoryDating,
		CategoryIllegal,
		CategorySuspicious,
		CategoryBenign,
	}
}

// ParseCategory maps a raw oracle label to a Category
// ok=false means the label is not in the enum; callers decide the fallback
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryMalicious, CategoryAdultContent, CategoryGambling,
		CategoryDating, CategoryIllegal, CategorySuspicious, CategoryBenign:
		return Category(raw), true
	}
	return "", false
}

// Source identifies which oracle produced a verdict
type Source string

// Verdict sources; values match the finding_source enum in Postgres
const (
	SourceAI          Source = "ai"
	SourceThreatIntel Source = "threat_intel"
)

// Finding is one non-benign classification of one observed lookup
type Finding struct {
	ID        int64     `json:"id"`
	QueryTS   time.Time `json:"query_ts"`
	Client    string    `json:"client,omitempty"`
	Domain    string    `json:"domain"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason,omitempty"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a findings query; zero fields are ignored
type Filter struct {
	Domain   string
	Category Category
	Source   Source
	Since    time.Time
	Until    time.Time
	AfterTS  time.Time
	AfterID  int64
	Limit    int
}
