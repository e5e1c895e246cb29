// Package domain defines the findings API transport types
package domain

import "time"

// SearchInput filters the findings search endpoint
type SearchInput struct {
	Domain   string     `json:"domain,omitempty" validate:"omitempty,max=253"`
	Category string     `json:"category,omitempty" validate:"omitempty,oneof=malicious adult_content gambling dating illegal_content suspicious benign"`
	Source   string     `json:"source,omitempty" validate:"omitempty,oneof=ai threat_intel"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
	AfterTS  *time.Time `json:"after_ts,omitempty"`
	AfterID  int64      `json:"after_id,omitempty" validate:"omitempty,min=1"`
	Limit    int        `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}
