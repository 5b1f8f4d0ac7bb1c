package ws

import (
	"time"

	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/models"
)

// DonationEvent is the public view of a new donation. It never carries the
// donor's email, uid or request metadata.
type DonationEvent struct {
	Event        string    `json:"event"`
	ID           string    `json:"id"`
	DonationType string    `json:"type"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Donor        string    `json:"donor"`
	Timestamp    time.Time `json:"timestamp"`
}

// FeedHub pushes each newly recorded donation to connected feed clients.
type FeedHub struct {
	*Hub
	log *zap.Logger
}

func NewFeedHub(log *zap.Logger) *FeedHub {
	return &FeedHub{Hub: NewHub(), log: log}
}

func (f *FeedHub) PublishDonation(d models.Donation) {
	ev := DonationEvent{
		Event:        "donation",
		ID:           d.ID,
		DonationType: d.Type,
		Amount:       d.Amount,
		Currency:     d.Currency,
		Donor:        d.Donor.Name,
		Timestamp:    d.Timestamp,
	}
	if err := f.BroadcastAll(ev); err != nil {
		f.log.Error("donation feed broadcast failed", zap.String("donation_id", d.ID), zap.Error(err))
	}
}
