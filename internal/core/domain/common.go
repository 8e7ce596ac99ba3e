package domain

import "time"

// AuditFields holds standard audit information for domain entities that are
// administered by hand (currencies). Rate rows carry their own
// manual-override metadata instead.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}
