// Package domain defines the analysis pipeline types
package domain

import (
	"time"

	"github.com/google/uuid"

	"gravitywatch/internal/core/canon"
	"gravitywatch/internal/core/dedupe"
	"gravitywatch/internal/platform/logger"
)

// QueryRecord is one DNS lookup as reported by a log source
// Domain is canonical by the time a record leaves a source adapter
type QueryRecord struct {
	Timestamp time.Time
	Client    string
	Domain    string
	Type      string
	Status    string
	Upstream  string
}

// DomainGroup bundles every record that looked up the same domain
type DomainGroup struct {
	Domain  string
	Records []QueryRecord
}

// Groups deduplicates records by canonical domain, preserving the order
// domains were first seen. Records whose domain does not canonicalize are
// dropped with a warning; a bad record never aborts the cycle
func Groups(records []QueryRecord) ([]DomainGroup, int) {
	cleaned := make([]QueryRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		d, err := canon.Domain(r.Domain)
		if err != nil {
			logger.Get().Warn().Str("domain", r.Domain).Err(err).Msg("dropping malformed domain")
			dropped++
			continue
		}
		r.Domain = d
		cleaned = append(cleaned, r)
	}

	res := dedupe.ByKey(cleaned, func(r QueryRecord) string { return r.Domain })
	out := make([]DomainGroup, 0, len(res.Keys))
	for _, k := range res.Keys {
		out = append(out, DomainGroup{Domain: k, Records: res.Members[k]})
	}
	return out, dropped
}

// Stage names the furthest point a cycle reached
type Stage string

// Pipeline stages in execution order
const (
	StageIdle           Stage = "idle"
	StageCursorLoaded   Stage = "cursor_loaded"
	StageFetched        Stage = "fetched"
	StageDeduplicated   Stage = "deduplicated"
	StageClassified     Stage = "classified"
	StagePersisted      Stage = "persisted"
	StageEvaluated      Stage = "evaluated"
	StageNotified       Stage = "notified"
	StageCursorAdvanced Stage = "cursor_advanced"
)

// Status summarizes how a cycle ended
type Status string

// Cycle statuses
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
	StatusNoop    Status = "noop"
)

// Outcome is the structured result of one analysis cycle
type Outcome struct {
	CycleID       uuid.UUID `json:"cycle_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Stage         Stage     `json:"stage"`
	Status        Status    `json:"status"`
	Fetched       int       `json:"fetched"`
	UniqueDomains int       `json:"unique_domains"`
	Classified    int       `json:"classified"`
	Skipped       int       `json:"skipped"`
	Persisted     int       `json:"persisted"`
	Duplicates    int       `json:"duplicates"`
	Alerted       bool      `json:"alerted"`
	Err           string    `json:"error,omitempty"`
}
