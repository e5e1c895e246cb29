// Package domain defines the analysis cursor types
package domain

import "time"

// Cursor is the singleton high-water mark for processed query timestamps
// Version increments on every advance and backs the CAS check
type Cursor struct {
	LastProcessed time.Time `json:"last_processed"`
	Version       int64     `json:"version"`
}
