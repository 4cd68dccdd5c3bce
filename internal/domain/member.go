package domain

import "time"

// Login platforms. OAuth members carry a random placeholder password hash and
// cannot use password login or password change.
const (
	PlatformLocal = "local"
	PlatformKakao = "kakao"
)

// Member is a registered user. PartnerID is 0 while unpaired; the pairing
// relationship is always mutual (a.Partner == b implies b.Partner == a).
type Member struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Platform     string
	ProviderID   string // OAuth provider's user id, empty for local members

	// Nickname is the pet name this member's partner gave them.
	Nickname string

	PartnerID           int64
	RelationshipStarted time.Time // zero while unpaired

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Paired reports whether the member currently has a partner.
func (m Member) Paired() bool { return m.PartnerID != 0 }
