package domain

import "time"

// Session is the stored authentication pair plus its expiry. Token and
// ClientID travel together: one without the other is invalid and gets
// cleared wherever it is observed.
type Session struct {
	Token     string    `json:"token"`
	ClientID  int       `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Complete reports whether both halves of the pair are present.
func (s Session) Complete() bool {
	return s.Token != "" && s.ClientID > 0
}

// Expired reports whether the session is past its expiry. A zero
// expiry means the server gave no bound and the session never expires
// locally.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
