package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yeoro/twogether/internal/domain"
)

// MemoryDirectory is a mutex-guarded in-process Directory. It backs dev mode
// and tests; production deployments plug in a database-backed implementation.
type MemoryDirectory struct {
	mu      sync.Mutex
	nextID  int64
	members map[int64]domain.Member
	byEmail map[string]int64
	byOAuth map[string]int64 // platform + ":" + providerID
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		nextID:  1,
		members: make(map[int64]domain.Member),
		byEmail: make(map[string]int64),
		byOAuth: make(map[string]int64),
	}
}

func (d *MemoryDirectory) GetMember(ctx context.Context, memberID int64) (domain.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.members[memberID]
	if !ok {
		return domain.Member{}, ErrMemberNotFound
	}
	return m, nil
}

func (d *MemoryDirectory) GetMemberByEmail(ctx context.Context, email string) (domain.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return domain.Member{}, ErrMemberNotFound
	}
	return d.members[id], nil
}

func (d *MemoryDirectory) CreateMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := normalizeEmail(m.Email)
	if _, ok := d.byEmail[email]; ok {
		return domain.Member{}, ErrEmailTaken
	}
	return d.insert(m, email), nil
}

func (d *MemoryDirectory) FindOrCreateByOAuth(ctx context.Context, platform, providerID string, m domain.Member) (domain.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := platform + ":" + providerID
	if id, ok := d.byOAuth[key]; ok {
		return d.members[id], nil
	}

	m.Platform = platform
	m.ProviderID = providerID
	created := d.insert(m, normalizeEmail(m.Email))
	d.byOAuth[key] = created.ID
	return created, nil
}

// insert assigns an id and stores the member. Callers must hold the lock.
// An email already indexed to another member keeps its entry: an OAuth
// profile sharing a local member's address must not capture that member's
// password logins.
func (d *MemoryDirectory) insert(m domain.Member, email string) domain.Member {
	now := time.Now()
	m.ID = d.nextID
	m.Email = email
	m.CreatedAt = now
	m.UpdatedAt = now
	d.nextID++
	d.members[m.ID] = m
	if email != "" {
		if _, taken := d.byEmail[email]; !taken {
			d.byEmail[email] = m.ID
		}
	}
	return m
}

func (d *MemoryDirectory) SetPartners(ctx context.Context, memberID, partnerID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	b, ok := d.members[partnerID]
	if !ok {
		return ErrMemberNotFound
	}
	if a.Paired() || b.Paired() {
		return ErrAlreadyPaired
	}

	now := time.Now()
	a.PartnerID = b.ID
	b.PartnerID = a.ID
	a.RelationshipStarted = now
	b.RelationshipStarted = now
	a.UpdatedAt = now
	b.UpdatedAt = now
	d.members[a.ID] = a
	d.members[b.ID] = b
	return nil
}

func (d *MemoryDirectory) ClearPartners(ctx context.Context, memberID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	if !m.Paired() {
		return ErrNotPaired
	}

	now := time.Now()
	if partner, ok := d.members[m.PartnerID]; ok {
		partner.PartnerID = 0
		partner.RelationshipStarted = time.Time{}
		partner.UpdatedAt = now
		d.members[partner.ID] = partner
	}
	m.PartnerID = 0
	m.RelationshipStarted = time.Time{}
	m.UpdatedAt = now
	d.members[m.ID] = m
	return nil
}

func (d *MemoryDirectory) UpdatePasswordHash(ctx context.Context, memberID int64, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	m.PasswordHash = hash
	m.UpdatedAt = time.Now()
	d.members[m.ID] = m
	return nil
}

func (d *MemoryDirectory) SetNickname(ctx context.Context, memberID int64, nickname string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	m.Nickname = nickname
	m.UpdatedAt = time.Now()
	d.members[m.ID] = m
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
