package repository

import (
	"context"
	"errors"
	"time"

	"github.com/xsantcastx/xsantcastx/internal/models"
)

var ErrDonationNotFound = errors.New("donation not found")

// DonationStore owns persisted donation records. Implementations rely only on
// the backend's single-write atomicity; CreateIfAbsent is the one guarded path.
type DonationStore interface {
	// Create appends d and sets d.ID.
	Create(ctx context.Context, d *models.Donation) error
	// CreateIfAbsent inserts d unless a record with the same type and provider
	// reference exists, in which case d is replaced by the stored record.
	CreateIfAbsent(ctx context.Context, d *models.Donation) (created bool, err error)
	FindByProviderReference(ctx context.Context, donationType, ref string) (*models.Donation, error)
	MarkWebhookConfirmed(ctx context.Context, id string, at time.Time) error
	ListByType(ctx context.Context, donationType string) ([]models.Donation, error)
}
