package models

import "time"

// Warn is a single infraction recorded against a subject.
// Records are written once and never updated.
type Warn struct {
	ID        int64     `bson:"_id" json:"id" db:"id"`
	SubjectID string    `bson:"subject_id" json:"subjectId" db:"subject_id"`
	IssuerID  *string   `bson:"issuer_id" json:"issuerId,omitempty" db:"issuer_id"`
	Reason    string    `bson:"reason" json:"reason" db:"reason"`
	IssuedAt  time.Time `bson:"issued_at" json:"issuedAt" db:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt" db:"expires_at"`
}

// IsActive reports whether the warn still counts at now.
func (w Warn) IsActive(now time.Time) bool {
	return now.Before(w.ExpiresAt)
}

// IsSystem reports whether the warn was issued by an automated action.
func (w Warn) IsSystem() bool {
	return w.IssuerID == nil
}

// IssuerOr returns the issuer id, or fallback for system warns.
func (w Warn) IssuerOr(fallback string) string {
	if w.IssuerID == nil {
		return fallback
	}
	return *w.IssuerID
}

// WarnStats summarises the contents of a warn backend.
type WarnStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Subjects int `json:"subjects"`
}
