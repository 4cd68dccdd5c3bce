// Package directory is the member registry the auth and pairing services read
// from and write to. Token issuance needs the member's pairing state at mint
// time, and the pairing flow records the mutual relationship here, so the
// directory sits behind a narrow interface that any member database can
// implement.
package directory

import (
	"context"
	"errors"

	"github.com/yeoro/twogether/internal/domain"
)

var (
	// ErrMemberNotFound is returned when no member matches the lookup.
	ErrMemberNotFound = errors.New("directory: member not found")

	// ErrEmailTaken is returned when a signup reuses a registered email.
	ErrEmailTaken = errors.New("directory: email already registered")

	// ErrAlreadyPaired is returned when a pairing write would overwrite an
	// existing relationship on either side.
	ErrAlreadyPaired = errors.New("directory: member already paired")

	// ErrNotPaired is returned when an unpair targets a member without a
	// partner.
	ErrNotPaired = errors.New("directory: member not paired")
)

// Directory exposes the member operations the services need. Implementations
// must make SetPartners atomic across both members.
type Directory interface {
	// GetMember returns the member by id, or ErrMemberNotFound.
	GetMember(ctx context.Context, memberID int64) (domain.Member, error)

	// GetMemberByEmail returns the member registered with email, or
	// ErrMemberNotFound.
	GetMemberByEmail(ctx context.Context, email string) (domain.Member, error)

	// CreateMember registers a new member and returns it with its assigned
	// id. Returns ErrEmailTaken when the email is already registered.
	CreateMember(ctx context.Context, m domain.Member) (domain.Member, error)

	// FindOrCreateByOAuth returns the member with the given provider
	// identity, creating one on first login.
	FindOrCreateByOAuth(ctx context.Context, platform, providerID string, m domain.Member) (domain.Member, error)

	// SetPartners records a mutual pairing between the two members. Both
	// sides are written in one step; if either member is already paired the
	// whole write fails with ErrAlreadyPaired.
	SetPartners(ctx context.Context, memberID, partnerID int64) error

	// ClearPartners dissolves the pairing of memberID and its partner.
	// Returns ErrNotPaired when the member has no partner.
	ClearPartners(ctx context.Context, memberID int64) error

	// UpdatePasswordHash replaces the member's stored password hash.
	UpdatePasswordHash(ctx context.Context, memberID int64, hash string) error

	// SetNickname sets the pet name the caller's partner gave them.
	SetNickname(ctx context.Context, memberID int64, nickname string) error
}
