package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/domain"
	"github.com/xsantcastx/xsantcastx/internal/models"
	"github.com/xsantcastx/xsantcastx/internal/repository"
)

// Caller describes who triggered a confirmation. UID is empty for anonymous callers.
type Caller struct {
	UID       string
	UserAgent string
	IP        string
}

func (c Caller) donorUID() string {
	if c.UID == "" {
		return domain.AnonymousUID
	}
	return c.UID
}

// DonationPublisher receives every newly recorded donation.
type DonationPublisher interface {
	PublishDonation(d models.Donation)
}

type StatsResult struct {
	Stats           models.DonationStats    `json:"stats"`
	RecentDonations []models.RecentDonation `json:"recentDonations"`
}

type DonationService struct {
	store     repository.DonationStore
	publisher DonationPublisher
	// uniqueRef switches Record to insert-if-absent on the provider reference.
	uniqueRef bool
	log       *zap.Logger
	now       func() time.Time
}

func NewDonationService(store repository.DonationStore, publisher DonationPublisher, uniqueRef bool, log *zap.Logger) *DonationService {
	return &DonationService{
		store:     store,
		publisher: publisher,
		uniqueRef: uniqueRef,
		log:       log,
		now:       time.Now,
	}
}

// Record persists a confirmed donation and sets d.ID. With the unique guard on,
// a second confirmation of the same reference returns the stored record instead.
func (s *DonationService) Record(ctx context.Context, d *models.Donation) error {
	d.Status = domain.DonationStatusCompleted
	if d.Timestamp.IsZero() {
		d.Timestamp = s.now().UTC()
	}

	created := true
	var err error
	if s.uniqueRef {
		created, err = s.store.CreateIfAbsent(ctx, d)
	} else {
		err = s.store.Create(ctx, d)
	}
	if err != nil {
		return apperr.Wrap(err, "Failed to record donation")
	}

	if !created {
		s.log.Info("donation already recorded",
			zap.String("donation_id", d.ID),
			zap.String("type", d.Type),
			zap.String("provider_reference", d.ProviderReference))
		return nil
	}
	s.log.Info("donation recorded",
		zap.String("donation_id", d.ID),
		zap.String("type", d.Type),
		zap.Float64("amount", d.Amount),
		zap.String("currency", d.Currency),
		zap.String("provider_reference", d.ProviderReference))
	if s.publisher != nil {
		s.publisher.PublishDonation(*d)
	}
	return nil
}

// Stats aggregates every donation of one type and lists the most recent ones.
func (s *DonationService) Stats(ctx context.Context, donationType string) (*StatsResult, error) {
	list, err := s.store.ListByType(ctx, donationType)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to retrieve donation statistics")
	}

	var stats models.DonationStats
	for _, d := range list {
		stats.TotalAmount += d.Amount
		stats.TotalCount++
	}
	if stats.TotalCount > 0 {
		stats.AverageAmount = stats.TotalAmount / float64(stats.TotalCount)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	n := min(len(list), domain.RecentDonationsLimit)
	recent := make([]models.RecentDonation, 0, n)
	for _, d := range list[:n] {
		recent = append(recent, models.RecentDonation{
			ID:                d.ID,
			Amount:            d.Amount,
			Currency:          d.Currency,
			Timestamp:         d.Timestamp,
			Donor:             d.Donor.Name,
			ProviderReference: d.ProviderReference,
		})
	}
	return &StatsResult{Stats: stats, RecentDonations: recent}, nil
}

// ConfirmByWebhook flags the donation with the given reference. found is false
// when no donation matches, which is not an error.
func (s *DonationService) ConfirmByWebhook(ctx context.Context, donationType, ref string) (found bool, err error) {
	d, err := s.store.FindByProviderReference(ctx, donationType, ref)
	if errors.Is(err, repository.ErrDonationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.store.MarkWebhookConfirmed(ctx, d.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
