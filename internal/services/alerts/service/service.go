// Package service implements alert evaluation
package service

import (
	"sort"

	"gravitywatch/internal/services/alerts/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// DefaultAlertCategories are the categories that page someone out of the box
// suspicious is opt-in because the LLM uses it as its uncertainty bucket
func DefaultAlertCategories() []fdom.Category {
	return []fdom.Category{
		fdom.CategoryMalicious,
		fdom.CategoryAdultContent,
		fdom.CategoryGambling,
		fdom.CategoryDating,
		fdom.CategoryIllegal,
	}
}

// Config for the alerts service
type Config struct {
	// Categories that trigger an alert; empty means the defaults
	Categories []fdom.Category
}

// Service implements domain.EvaluatorPort
type Service struct {
	alertOn map[fdom.Category]bool
}

// New constructs an alerts service
func New(cfg Config) *Service {
	cats := cfg.Categories
	if len(cats) == 0 {
		cats = DefaultAlertCategories()
	}
	on := make(map[fdom.Category]bool, len(cats))
	for _, c := range cats {
		on[c] = true
	}
	return &Service{alertOn: on}
}

// Evaluate implements domain.EvaluatorPort
// The batch carries every finding of the cycle so the digest shows full
// context, but it only exists when at least one category actually fired
func (s *Service) Evaluate(xs []fdom.Finding) *domain.Batch {
	if len(xs) == 0 {
		return nil
	}

	by := make(map[fdom.Category][]fdom.Finding)
	for _, f := range xs {
		by[f.Category] = append(by[f.Category], f)
	}
	for c := range by {
		g := by[c]
		sort.SliceStable(g, func(i, j int) bool {
			if !g[i].QueryTS.Equal(g[j].QueryTS) {
				return g[i].QueryTS.Before(g[j].QueryTS)
			}
			return g[i].Domain < g[j].Domain
		})
	}

	var triggered, quiet []fdom.Category
	for _, c := range fdom.AllCategories() {
		if len(by[c]) == 0 {
			continue
		}
		if s.alertOn[c] {
			triggered = append(triggered, c)
		} else {
			quiet = append(quiet, c)
		}
	}
	if len(triggered) == 0 {
		return nil
	}

	ordered := make([]fdom.Finding, 0, len(xs))
	for _, c := range append(append([]fdom.Category{}, triggered...), quiet...) {
		ordered = append(ordered, by[c]...)
	}

	return &domain.Batch{Findings: ordered, ByCategory: by, Triggered: triggered}
}
