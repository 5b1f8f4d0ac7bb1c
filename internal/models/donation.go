package models

import (
	"time"
)

// Donation is one confirmed payment. Records are append-only apart from the webhook flag.
type Donation struct {
	ID                 string          `gorm:"type:char(36);primaryKey" firestore:"-" json:"id"`
	Type               string          `gorm:"size:16;not null;index:ix_donations_type_ts,priority:1" firestore:"type" json:"type"`
	Amount             float64         `gorm:"not null" firestore:"amount" json:"amount"`
	Currency           string          `gorm:"size:3;not null" firestore:"currency" json:"currency"`
	ProviderReference  string          `gorm:"size:255;not null;index:ix_donations_provider_ref" firestore:"providerReference" json:"providerReference"`
	Status             string          `gorm:"size:20;not null" firestore:"status" json:"status"`
	Donor              Donor           `gorm:"embedded;embeddedPrefix:donor_" firestore:"donor" json:"donor"`
	PaymentMethod      PaymentMethod   `gorm:"embedded;embeddedPrefix:pm_" firestore:"paymentMethod" json:"paymentMethod"`
	Request            RequestMetadata `gorm:"embedded;embeddedPrefix:req_" firestore:"requestMetadata" json:"-"`
	ProviderCreatedAt  *time.Time      `firestore:"providerCreatedAt" json:"providerCreatedAt,omitempty"`
	WebhookConfirmed   bool            `gorm:"not null;default:false" firestore:"webhookConfirmed" json:"webhookConfirmed"`
	WebhookConfirmedAt *time.Time      `firestore:"webhookConfirmedAt" json:"webhookConfirmedAt,omitempty"`
	Timestamp          time.Time       `gorm:"not null;index:ix_donations_type_ts,priority:2" firestore:"timestamp,serverTimestamp" json:"timestamp"`
}

func (Donation) TableName() string {
	return "donations"
}

type Donor struct {
	UID   string  `gorm:"size:128;not null" firestore:"uid" json:"uid"`
	Name  string  `gorm:"size:255;not null" firestore:"name" json:"name"`
	Email *string `gorm:"size:255" firestore:"email" json:"email"`
}

// PaymentMethod is filled best-effort for card payments; zero when unknown.
type PaymentMethod struct {
	Type     string `gorm:"size:32" firestore:"type" json:"type,omitempty"`
	Brand    string `gorm:"size:32" firestore:"brand" json:"brand,omitempty"`
	Last4    string `gorm:"size:4" firestore:"last4" json:"last4,omitempty"`
	ExpMonth int64  `firestore:"expMonth" json:"expMonth,omitempty"`
	ExpYear  int64  `firestore:"expYear" json:"expYear,omitempty"`
}

// RequestMetadata is kept for abuse review only and never returned to callers.
type RequestMetadata struct {
	UserAgent string `gorm:"size:512" firestore:"userAgent" json:"userAgent"`
	IP        string `gorm:"size:64" firestore:"ip" json:"ip"`
}

type DonationStats struct {
	TotalAmount   float64 `json:"totalAmount"`
	TotalCount    int     `json:"totalCount"`
	AverageAmount float64 `json:"averageAmount"`
}

type RecentDonation struct {
	ID                string    `json:"id"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Timestamp         time.Time `json:"timestamp"`
	Donor             string    `json:"donor"`
	ProviderReference string    `json:"providerReference"`
}
