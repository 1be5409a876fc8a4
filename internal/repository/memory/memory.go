// Package memory is a mutex-guarded in-memory implementation of the
// repository interfaces. It backs the test suite and the
// storage.backend=memory dev mode, and delegates transition legality
// to the lifecycle package so its guards stay in lockstep with the
// SQL predicates of the postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/lifecycle"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"
)

type txKey struct{}

// Store holds all tables behind one mutex. WithinTx snapshots the
// maps so a failed transaction leaves nothing behind.
type Store struct {
	mu          sync.Mutex
	donations   map[string]*models.Donation
	acceptances map[string]*models.Acceptance
	users       map[string]*models.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		donations:   make(map[string]*models.Donation),
		acceptances: make(map[string]*models.Acceptance),
		users:       make(map[string]*models.User),
	}
}

// Donations returns the donation repository view of the store.
func (s *Store) Donations() repository.DonationRepository {
	return donationRepo{s}
}

// Acceptances returns the acceptance repository view of the store.
func (s *Store) Acceptances() repository.AcceptanceRepository {
	return acceptanceRepo{s}
}

// PutUser registers donor display fields for listing embeds. User
// accounts are owned by the identity service; this mirrors just what
// listings join in.
func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.users[user.ID] = &u
}

// WithinTx serializes fn against all other store access and restores
// the pre-transaction state when fn returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	donations := snapshot(s.donations, cloneDonation)
	acceptances := snapshot(s.acceptances, cloneAcceptance)

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.donations = donations
		s.acceptances = acceptances
		return err
	}
	return nil
}

// enter acquires the store mutex unless the context already holds the
// transaction lock. The returned func releases whatever was taken.
func (s *Store) enter(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func snapshot[T any](m map[string]*T, clone func(*T) *T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func cloneDonation(d *models.Donation) *models.Donation {
	c := *d
	c.Photos = append([]models.Photo(nil), d.Photos...)
	return &c
}

func cloneAcceptance(a *models.Acceptance) *models.Acceptance {
	c := *a
	return &c
}

type donationRepo struct {
	s *Store
}

func (r donationRepo) Create(ctx context.Context, donation *models.Donation) error {
	defer r.s.enter(ctx)()

	if _, exists := r.s.donations[donation.ID]; exists {
		return apperrors.Conflict("donation already exists")
	}
	r.s.donations[donation.ID] = cloneDonation(donation)
	return nil
}

func (r donationRepo) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	defer r.s.enter(ctx)()

	d, ok := r.s.donations[id]
	if !ok {
		return nil, apperrors.NotFound("donation not found")
	}
	return cloneDonation(d), nil
}

func (r donationRepo) List(ctx context.Context, q repository.ListQuery) ([]*models.Donation, error) {
	defer r.s.enter(ctx)()

	status := q.Status
	if status == "" {
		status = models.DonationAvailable
	}
	area := strings.ToLower(q.Area)

	var matched []*models.Donation
	for _, d := range r.s.donations {
		if d.Status != status {
			continue
		}
		if area != "" && !strings.Contains(strings.ToLower(d.Area), area) {
			continue
		}
		c := cloneDonation(d)
		if u, ok := r.s.users[d.DonorID]; ok {
			c.Donor = &models.DonorInfo{Name: u.Name, Phone: u.Phone}
		}
		matched = append(matched, c)
	}

	switch q.Sort {
	case "pickup_time":
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].PreferredPickupTime, matched[j].PreferredPickupTime
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case "area":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Area < matched[j].Area
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	offset := q.Offset()
	if offset >= len(matched) {
		return []*models.Donation{}, nil
	}
	matched = matched[offset:]
	if q.PageSize > 0 && len(matched) > q.PageSize {
		matched = matched[:q.PageSize]
	}
	return matched, nil
}

func (r donationRepo) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.apply(ctx, id, "", lifecycle.EventAccept, at)
}

func (r donationRepo) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.apply(ctx, id, "", lifecycle.EventComplete, at)
}

func (r donationRepo) MarkCancelled(ctx context.Context, id, donorID string) (bool, error) {
	return r.apply(ctx, id, donorID, lifecycle.EventCancel, time.Time{})
}

// apply mirrors a conditional UPDATE: a failed guard reports zero rows
// affected rather than an error.
func (r donationRepo) apply(ctx context.Context, id, donorID string, event lifecycle.Event, at time.Time) (bool, error) {
	defer r.s.enter(ctx)()

	d, ok := r.s.donations[id]
	if !ok {
		return false, nil
	}
	if donorID != "" && d.DonorID != donorID {
		return false, nil
	}

	c := cloneDonation(d)
	if err := lifecycle.Apply(c, event, at); err != nil {
		return false, nil
	}
	r.s.donations[id] = c
	return true, nil
}

type acceptanceRepo struct {
	s *Store
}

func (r acceptanceRepo) Create(ctx context.Context, acceptance *models.Acceptance) error {
	defer r.s.enter(ctx)()

	if _, exists := r.s.acceptances[acceptance.ID]; exists {
		return apperrors.Conflict("acceptance already exists")
	}
	r.s.acceptances[acceptance.ID] = cloneAcceptance(acceptance)
	return nil
}

func (r acceptanceRepo) GetByDonationAndVolunteer(ctx context.Context, donationID, volunteerID string) (*models.Acceptance, error) {
	defer r.s.enter(ctx)()

	for _, a := range r.s.acceptances {
		if a.DonationID == donationID && a.VolunteerID == volunteerID {
			return cloneAcceptance(a), nil
		}
	}
	return nil, apperrors.NotFound("acceptance not found")
}

func (r acceptanceRepo) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	defer r.s.enter(ctx)()

	a, ok := r.s.acceptances[id]
	if !ok {
		return apperrors.NotFound("acceptance not found")
	}
	c := cloneAcceptance(a)
	c.Status = models.AcceptanceCompleted
	completed := at
	c.CompletedAt = &completed
	r.s.acceptances[id] = c
	return nil
}
