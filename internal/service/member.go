package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/pkg/cryptox"
	"github.com/yeoro/twogether/pkg/jwtx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// MemberService covers account lifecycle: signup, password login and password
// change. Token issuance is delegated to Sessions so login and OAuth converge
// on one issuing path.
type MemberService struct {
	Directory directory.Directory
	Sessions  *SessionService
}

// Signup registers a local member. The email must be unused; the password is
// stored as an argon2id hash, never in the clear.
func (s *MemberService) Signup(ctx context.Context, email, name, password string) (domain.Member, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Member{}, err
	}

	m, err := s.Directory.CreateMember(ctx, domain.Member{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Platform:     domain.PlatformLocal,
	})
	if err != nil {
		return domain.Member{}, err
	}

	slogx.FromContext(ctx).Info("member registered", "member_id", m.ID)
	return m, nil
}

// Login verifies email+password credentials and issues a token pair. Unknown
// emails and wrong passwords collapse into one error so the response does not
// leak which half was wrong.
func (s *MemberService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	m, err := s.Directory.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrMemberNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if m.Platform != domain.PlatformLocal {
		return nil, ErrPasswordLoginUnavailable
	}

	if err := cryptox.VerifyPassword(password, m.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Info("password login failed", "member_id", m.ID)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.Sessions.Issue(ctx, m.ID)
}

// ChangePassword verifies the current password, stores a new hash, and then
// kills the session that made the request: the active refresh session is
// cleared and the presented access token is blacklisted, forcing a re-login
// everywhere.
func (s *MemberService) ChangePassword(ctx context.Context, claims jwtx.Claims, currentPassword, newPassword string) error {
	m, err := s.Directory.GetMember(ctx, claims.MemberID)
	if err != nil {
		return fmt.Errorf("load member %d: %w", claims.MemberID, err)
	}

	if m.Platform != domain.PlatformLocal {
		return ErrPasswordLoginUnavailable
	}

	if err := cryptox.VerifyPassword(currentPassword, m.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	if newPassword == currentPassword {
		return ErrPasswordUnchanged
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Directory.UpdatePasswordHash(ctx, m.ID, hash); err != nil {
		return err
	}

	if err := s.Sessions.Logout(ctx, claims); err != nil {
		return fmt.Errorf("revoke session after password change: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed, session revoked", "member_id", m.ID)
	return nil
}
