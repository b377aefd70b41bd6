package domain

import "time"

// ActivityRecord is one entry of the session audit trail. The raw token is
// never stored, only its fingerprint.
type ActivityRecord struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	UserID           int64     `json:"user_id,omitempty"`
	Email            string    `json:"email,omitempty"`
	TokenFingerprint string    `json:"token_fingerprint,omitempty"`
	Browser          string    `json:"browser,omitempty"`
	OS               string    `json:"os,omitempty"`
	Platform         string    `json:"platform,omitempty"`
	IP               string    `json:"ip,omitempty"`
	Message          string    `json:"message,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}
