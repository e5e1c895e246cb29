// Package domain defines alert evaluation types
package domain

import (
	fdom "gravitywatch/internal/services/findings/domain"
)

// Batch is one cycle's worth of findings prepared for notification
type Batch struct {
	// Findings holds every new finding of the cycle, grouped by category
	// with triggered categories first and query_ts ascending inside each
	Findings []fdom.Finding

	// ByCategory groups Findings for digest rendering
	ByCategory map[fdom.Category][]fdom.Finding

	// Triggered lists the categories that fired the alert, severity order
	Triggered []fdom.Category
}
