package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xsantcastx/xsantcastx/internal/models"
)

// DonationRepository stores donations in MySQL through gorm.
type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, d *models.Donation) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonationRepository) CreateIfAbsent(ctx context.Context, d *models.Donation) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Donation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ? AND provider_reference = ?", d.Type, d.ProviderReference).
			First(&existing).Error
		if err == nil {
			*d = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *DonationRepository) FindByProviderReference(ctx context.Context, donationType, ref string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.WithContext(ctx).
		Where("type = ? AND provider_reference = ?", donationType, ref).
		Order("timestamp ASC").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) MarkWebhookConfirmed(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"webhook_confirmed":    true,
			"webhook_confirmed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDonationNotFound
	}
	return nil
}

func (r *DonationRepository) ListByType(ctx context.Context, donationType string) ([]models.Donation, error) {
	var list []models.Donation
	err := r.db.WithContext(ctx).Where("type = ?", donationType).Order("timestamp DESC").Find(&list).Error
	return list, err
}
