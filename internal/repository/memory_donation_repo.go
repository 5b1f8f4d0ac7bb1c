package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xsantcastx/xsantcastx/internal/models"
)

// MemoryDonationRepository keeps donations in process memory. It backs local
// development and tests; records are lost on restart.
type MemoryDonationRepository struct {
	mu        sync.RWMutex
	donations []models.Donation
	now       func() time.Time
}

func NewMemoryDonationRepository() *MemoryDonationRepository {
	return &MemoryDonationRepository{now: time.Now}
}

func (r *MemoryDonationRepository) Create(_ context.Context, d *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(d)
	return nil
}

func (r *MemoryDonationRepository) CreateIfAbsent(_ context.Context, d *models.Donation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexLocked(d.Type, d.ProviderReference); i >= 0 {
		*d = r.donations[i]
		return false, nil
	}
	r.insertLocked(d)
	return true, nil
}

func (r *MemoryDonationRepository) insertLocked(d *models.Donation) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = r.now()
	}
	r.donations = append(r.donations, *d)
}

func (r *MemoryDonationRepository) indexLocked(donationType, ref string) int {
	for i := range r.donations {
		if r.donations[i].Type == donationType && r.donations[i].ProviderReference == ref {
			return i
		}
	}
	return -1
}

func (r *MemoryDonationRepository) FindByProviderReference(_ context.Context, donationType, ref string) (*models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(donationType, ref)
	if i < 0 {
		return nil, ErrDonationNotFound
	}
	d := r.donations[i]
	return &d, nil
}

func (r *MemoryDonationRepository) MarkWebhookConfirmed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.donations {
		if r.donations[i].ID == id {
			r.donations[i].WebhookConfirmed = true
			r.donations[i].WebhookConfirmedAt = &at
			return nil
		}
	}
	return ErrDonationNotFound
}

// ListByType returns matching records newest first.
func (r *MemoryDonationRepository) ListByType(_ context.Context, donationType string) ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]models.Donation, 0)
	for _, d := range r.donations {
		if d.Type == donationType {
			list = append(list, d)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

// Len reports how many records are stored across all types.
func (r *MemoryDonationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.donations)
}
