package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
}

// IsZero reports whether no user is set.
func (a Actor) IsZero() bool {
	return a.UserID == ""
}
