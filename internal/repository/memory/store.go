// Package memory provides a process-local Store used when no database is
// configured and as the backend for service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type state struct {
	complaints map[string]domain.Complaint
	order      []string
	history    []domain.StatusHistory
	users      map[string]domain.User
}

func newState() *state {
	return &state{
		complaints: make(map[string]domain.Complaint),
		users:      make(map[string]domain.User),
	}
}

func (s *state) clone() *state {
	out := &state{
		complaints: make(map[string]domain.Complaint, len(s.complaints)),
		order:      append([]string(nil), s.order...),
		history:    append([]domain.StatusHistory(nil), s.history...),
		users:      make(map[string]domain.User, len(s.users)),
	}
	for k, v := range s.complaints {
		out.complaints[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

// Store is a mutex-guarded in-memory repository.Store.
type Store struct {
	mu   sync.Mutex
	data *state
	inTx bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) Complaints() repository.ComplaintRepository  { return complaints{s} }
func (s *Store) History() repository.StatusHistoryRepository { return history{s} }
func (s *Store) Users() repository.UserRepository            { return users{s} }

// WithinTx runs fn against a copy of the data and publishes the copy only
// when fn succeeds. Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type complaints struct{ s *Store }

func (r complaints) Create(_ context.Context, c *domain.Complaint) error {
	defer r.s.lock()()
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	r.s.data.complaints[c.ID] = *c
	r.s.data.order = append(r.s.data.order, c.ID)
	return nil
}

func (r complaints) Update(_ context.Context, c *domain.Complaint) error {
	defer r.s.lock()()
	existing, ok := r.s.data.complaints[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// owner, content and creation time are immutable
	updated := *c
	updated.UserID = existing.UserID
	updated.Title = existing.Title
	updated.Description = existing.Description
	updated.Category = existing.Category
	updated.CreatedAt = existing.CreatedAt
	r.s.data.complaints[c.ID] = updated
	return nil
}

func (r complaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	defer r.s.lock()()
	c, ok := r.s.data.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r complaints) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r complaints) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	defer r.s.lock()()
	result := []domain.Complaint{}
	for _, id := range r.s.data.order {
		c := r.s.data.complaints[id]
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.AssignedHandlerID != nil && !c.IsHandledBy(*filter.AssignedHandlerID) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		result = append(result, c)
	}
	// newest first; equal timestamps keep the newest insertion first
	reverse(result)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r complaints) ListOverdue(_ context.Context, now time.Time, limit int) ([]domain.Complaint, error) {
	defer r.s.lock()()
	result := []domain.Complaint{}
	for _, id := range r.s.data.order {
		c := r.s.data.complaints[id]
		if c.IsOverdue(now) {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ExpectedResolutionDate.Before(*result[j].ExpectedResolutionDate)
	})
	return paginate(result, limit, 0), nil
}

func (r complaints) Aggregate(_ context.Context, now time.Time) (repository.ComplaintAggregate, error) {
	defer r.s.lock()()
	var agg repository.ComplaintAggregate
	var responded int
	var responseSeconds float64
	for _, c := range r.s.data.complaints {
		agg.Total++
		if c.Status.IsActive() {
			agg.Active++
		}
		if c.Status == domain.StatusResolved {
			agg.Resolved++
		}
		if c.IsOverdue(now) {
			agg.Overdue++
		}
		if c.RespondedAt != nil {
			responded++
			responseSeconds += c.RespondedAt.Sub(c.CreatedAt).Seconds()
		}
	}
	if responded > 0 {
		avg := responseSeconds / float64(responded)
		agg.AvgResponseSeconds = &avg
	}
	return agg, nil
}

type history struct{ s *Store }

func (r history) Append(_ context.Context, entry *domain.StatusHistory) error {
	defer r.s.lock()()
	entry.ID = uuid.NewString()
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	r.s.data.history = append(r.s.data.history, *entry)
	return nil
}

func (r history) ListByComplaint(_ context.Context, complaintID string) ([]domain.StatusHistory, error) {
	defer r.s.lock()()
	result := []domain.StatusHistory{}
	for _, entry := range r.s.data.history {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	return result, nil
}

func (r history) ListRecentByRole(_ context.Context, role domain.Role, limit int) ([]domain.NavigatorUpdate, error) {
	defer r.s.lock()()
	result := []domain.NavigatorUpdate{}
	for i := len(r.s.data.history) - 1; i >= 0; i-- {
		entry := r.s.data.history[i]
		author, ok := r.s.data.users[entry.UpdatedBy]
		if !ok || author.Role != role {
			continue
		}
		complaint, ok := r.s.data.complaints[entry.ComplaintID]
		if !ok {
			continue
		}
		result = append(result, domain.NavigatorUpdate{
			ID:             entry.ID,
			ComplaintID:    entry.ComplaintID,
			ComplaintTitle: complaint.Title,
			NavigatorName:  author.FullName,
			NavigatorEmail: author.Email,
			OldStatus:      entry.OldStatus,
			NewStatus:      entry.NewStatus,
			UpdatedAt:      entry.UpdatedAt,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return paginate(result, limit, 0), nil
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, user *domain.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r users) GetByID(_ context.Context, id string) (*domain.User, error) {
	defer r.s.lock()()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.lock()()
	for _, user := range r.s.data.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r users) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	defer r.s.lock()()
	result := []domain.User{}
	for _, user := range r.s.data.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
