// Package domain defines the classification types
package domain

import (
	fdom "gravitywatch/internal/services/findings/domain"
)

// RawVerdict is one backend answer before category validation
type RawVerdict struct {
	Domain     string
	Category   string
	Reason     string
	Confidence *float64
}

// Verdict is a validated classification for one domain
type Verdict struct {
	Domain     string
	Category   fdom.Category
	Reason     string
	Source     fdom.Source
	Confidence *float64
}

// Result separates per-domain outcomes of one classification pass
// a failed domain never blocks the verdicts of its batch mates
type Result struct {
	Verdicts []Verdict
	Failed   map[string]error
}
