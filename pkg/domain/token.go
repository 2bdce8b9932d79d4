package domain

import "time"

// PublishToken is a short-lived, identity-based publish credential minted
// for a single run, standing in for long-lived stored secrets. A job only
// receives one when its effective grants include `id-token: write`.
type PublishToken struct {
	RunID    string `json:"run_id"`
	Subject  string `json:"subject"`
	Audience string `json:"audience"`

	// Value is the opaque bearer credential handed to the publish step.
	Value string `json:"-"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token is usable at the given instant.
func (t PublishToken) Valid(now time.Time) bool {
	return t.Value != "" && !now.Before(t.IssuedAt) && now.Before(t.ExpiresAt)
}
