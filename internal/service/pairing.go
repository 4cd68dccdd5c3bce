package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/pkg/cryptox"
	"github.com/yeoro/twogether/pkg/slogx"
)

const (
	// DefaultPairingCodeTTL bounds how long a generated code is claimable.
	DefaultPairingCodeTTL = 180 * time.Second

	// DefaultPairingLockTTL bounds the advisory generation lock so a crashed
	// holder cannot wedge generation for its member.
	DefaultPairingLockTTL = 5 * time.Second

	// maxGenerateAttempts caps candidate draws per generation call. The code
	// space is large enough that hitting this means something is wrong.
	maxGenerateAttempts = 5
)

// PairingService generates pairing codes and turns a consumed code into a
// mutual partner relationship. All code state lives in the TTL store; the
// directory is the system of record for who is paired with whom.
type PairingService struct {
	Store     store.Store
	Directory directory.Directory
	CodeTTL   time.Duration
	LockTTL   time.Duration
}

// GenerateCode returns the member's live pairing code, creating one if none
// exists. Concurrent calls for the same member converge on a single code: the
// owner slot is written conditionally and every path ends by re-reading it,
// so all callers report whatever the store actually holds.
func (s *PairingService) GenerateCode(ctx context.Context, memberID int64) (string, error) {
	codes := s.Store.PairingCodes()

	// 1. Fast path: a live code already exists.
	code, err := codes.CodeForOwner(ctx, memberID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// 2. Take the advisory lock to thin the herd. The lock is best effort:
	// a store hiccup or a losing race falls through to the conditional
	// writes, which stay correct without it.
	locked, err := codes.TryLock(ctx, memberID, s.lockTTL())
	if err != nil {
		slogx.FromContext(ctx).Warn("pairing lock unavailable, proceeding",
			"member_id", memberID, "error", err)
	}
	if locked {
		defer func() {
			if err := codes.Unlock(ctx, memberID); err != nil {
				slogx.FromContext(ctx).Warn("pairing unlock failed",
					"member_id", memberID, "error", err)
			}
		}()
	}

	// 3. Re-check under the lock: a racer may have finished while we waited.
	code, err = codes.CodeForOwner(ctx, memberID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// 4. Draw candidates until both directions are claimed.
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := cryptox.GeneratePairingCode()
		if err != nil {
			return "", err
		}

		wonOwner, err := codes.PutOwnerCode(ctx, memberID, candidate, s.codeTTL())
		if err != nil {
			return "", err
		}
		if !wonOwner {
			// A concurrent generation claimed the owner slot first; its
			// code is the member's code now.
			break
		}

		wonCode, err := codes.PutCodeOwner(ctx, candidate, memberID, s.codeTTL())
		if err != nil {
			return "", err
		}
		if wonCode {
			break
		}

		// Candidate collided with another member's live code. Roll back the
		// owner half and draw again.
		if err := codes.DeleteOwnerCode(ctx, memberID); err != nil {
			return "", err
		}
		slogx.FromContext(ctx).Info("pairing code collision, retrying",
			"member_id", memberID, "attempt", attempt+1)
	}

	// 5. The owner entry is canonical; return what the store holds rather
	// than what this call thinks it wrote.
	code, err = codes.CodeForOwner(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrCodeGenerationFailed
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Pair consumes the partner's code and records the mutual relationship.
// The self-pairing check runs before the consume so a member who enters
// their own code keeps it alive for their real partner.
func (s *PairingService) Pair(ctx context.Context, memberID int64, rawCode string) (domain.Member, error) {
	code, ok := cryptox.NormalizePairingCode(rawCode)
	if !ok {
		return domain.Member{}, ErrCodeInvalid
	}

	codes := s.Store.PairingCodes()

	// 1. Peek at the owner without consuming.
	owner, err := codes.OwnerForCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrCodeInvalid
	}
	if err != nil {
		return domain.Member{}, err
	}
	if owner == memberID {
		return domain.Member{}, ErrSelfPairingNotAllowed
	}

	// 2. Consume. A racer may have taken the code between peek and consume;
	// that surfaces exactly like an unknown code.
	owner, err = codes.Consume(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrCodeInvalid
	}
	if err != nil {
		return domain.Member{}, err
	}
	if owner == memberID {
		return domain.Member{}, ErrSelfPairingNotAllowed
	}

	// 3. Record the relationship on both members at once.
	if err := s.Directory.SetPartners(ctx, memberID, owner); err != nil {
		return domain.Member{}, err
	}

	// The consumer's own outstanding code, if any, is now pointless. Consume
	// clears both directions, so the stale code cannot be presented by a
	// third member afterwards.
	if ownCode, err := codes.CodeForOwner(ctx, memberID); err == nil {
		if _, err := codes.Consume(ctx, ownCode); err != nil && !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("failed to clear consumer's own code",
				"member_id", memberID, "error", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Warn("failed to read consumer's own code",
			"member_id", memberID, "error", err)
	}

	partner, err := s.Directory.GetMember(ctx, owner)
	if err != nil {
		return domain.Member{}, fmt.Errorf("load partner %d: %w", owner, err)
	}

	slogx.FromContext(ctx).Info("members paired",
		"member_id", memberID, "partner_id", owner)
	return partner, nil
}

// Unpair dissolves the caller's relationship on both sides.
func (s *PairingService) Unpair(ctx context.Context, memberID int64) error {
	return s.Directory.ClearPartners(ctx, memberID)
}

func (s *PairingService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultPairingCodeTTL
}

func (s *PairingService) lockTTL() time.Duration {
	if s.LockTTL > 0 {
		return s.LockTTL
	}
	return DefaultPairingLockTTL
}
