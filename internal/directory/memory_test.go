package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeoro/twogether/internal/domain"
)

func TestCreateAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	created, err := dir.CreateMember(ctx, domain.Member{
		Email:    "Alice@Example.com",
		Name:     "alice",
		Platform: domain.PlatformLocal,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "alice@example.com", created.Email)
	require.False(t, created.CreatedAt.IsZero())

	byID, err := dir.GetMember(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, byID.ID)

	// Lookup is case-insensitive on email.
	byEmail, err := dir.GetMemberByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = dir.CreateMember(ctx, domain.Member{Email: "alice@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = dir.GetMember(ctx, 999)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestFindOrCreateByOAuth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	first, err := dir.FindOrCreateByOAuth(ctx, domain.PlatformKakao, "kakao-123", domain.Member{
		Email: "bob@example.com",
		Name:  "bob",
	})
	require.NoError(t, err)
	require.Equal(t, domain.PlatformKakao, first.Platform)
	require.Equal(t, "kakao-123", first.ProviderID)

	// Second login with the same provider identity returns the same member.
	again, err := dir.FindOrCreateByOAuth(ctx, domain.PlatformKakao, "kakao-123", domain.Member{
		Email: "bob@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	other, err := dir.FindOrCreateByOAuth(ctx, domain.PlatformKakao, "kakao-456", domain.Member{
		Email: "carol@example.com",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestFindOrCreateByOAuthKeepsLocalEmailIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	local, err := dir.CreateMember(ctx, domain.Member{
		Email:        "shared@example.com",
		Platform:     domain.PlatformLocal,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	viaOAuth, err := dir.FindOrCreateByOAuth(ctx, domain.PlatformKakao, "kakao-77", domain.Member{
		Email: "shared@example.com",
	})
	require.NoError(t, err)
	require.NotEqual(t, local.ID, viaOAuth.ID)

	// Email lookup still resolves to the local member, so their password
	// login is unaffected by the colliding OAuth signup.
	got, err := dir.GetMemberByEmail(ctx, "shared@example.com")
	require.NoError(t, err)
	require.Equal(t, local.ID, got.ID)
	require.Equal(t, domain.PlatformLocal, got.Platform)
}

func TestSetPartnersIsMutualAndExclusive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	a, err := dir.CreateMember(ctx, domain.Member{Email: "a@example.com"})
	require.NoError(t, err)
	b, err := dir.CreateMember(ctx, domain.Member{Email: "b@example.com"})
	require.NoError(t, err)
	c, err := dir.CreateMember(ctx, domain.Member{Email: "c@example.com"})
	require.NoError(t, err)

	require.NoError(t, dir.SetPartners(ctx, a.ID, b.ID))

	gotA, err := dir.GetMember(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := dir.GetMember(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, gotA.PartnerID)
	require.Equal(t, a.ID, gotB.PartnerID)
	require.False(t, gotA.RelationshipStarted.IsZero())

	// Neither half of an existing couple can pair again.
	require.ErrorIs(t, dir.SetPartners(ctx, c.ID, a.ID), ErrAlreadyPaired)
	require.ErrorIs(t, dir.SetPartners(ctx, b.ID, c.ID), ErrAlreadyPaired)
}

func TestClearPartners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	a, err := dir.CreateMember(ctx, domain.Member{Email: "a@example.com"})
	require.NoError(t, err)
	b, err := dir.CreateMember(ctx, domain.Member{Email: "b@example.com"})
	require.NoError(t, err)

	require.ErrorIs(t, dir.ClearPartners(ctx, a.ID), ErrNotPaired)

	require.NoError(t, dir.SetPartners(ctx, a.ID, b.ID))
	require.NoError(t, dir.ClearPartners(ctx, a.ID))

	gotA, err := dir.GetMember(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := dir.GetMember(ctx, b.ID)
	require.NoError(t, err)
	require.False(t, gotA.Paired())
	require.False(t, gotB.Paired())
	require.True(t, gotA.RelationshipStarted.IsZero())
}

func TestUpdatePasswordHashAndNickname(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := NewMemoryDirectory()

	m, err := dir.CreateMember(ctx, domain.Member{Email: "a@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	require.NoError(t, dir.UpdatePasswordHash(ctx, m.ID, "new"))
	require.NoError(t, dir.SetNickname(ctx, m.ID, "sunshine"))

	got, err := dir.GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "new", got.PasswordHash)
	require.Equal(t, "sunshine", got.Nickname)

	require.ErrorIs(t, dir.UpdatePasswordHash(ctx, 999, "x"), ErrMemberNotFound)
}
