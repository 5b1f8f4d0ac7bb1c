package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xsantcastx/xsantcastx/internal/models"
)

const donationsCollection = "donations"

// FirestoreDonationRepository stores donations in the "donations" collection with auto IDs.
type FirestoreDonationRepository struct {
	client *firestore.Client
}

func NewFirestoreDonationRepository(client *firestore.Client) *FirestoreDonationRepository {
	return &FirestoreDonationRepository{client: client}
}

func (r *FirestoreDonationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(donationsCollection)
}

func (r *FirestoreDonationRepository) byReference(donationType, ref string) firestore.Query {
	return r.collection().
		Where("type", "==", donationType).
		Where("providerReference", "==", ref).
		Limit(1)
}

func (r *FirestoreDonationRepository) Create(ctx context.Context, d *models.Donation) error {
	doc, _, err := r.collection().Add(ctx, d)
	if err != nil {
		return err
	}
	d.ID = doc.ID
	return nil
}

func (r *FirestoreDonationRepository) CreateIfAbsent(ctx context.Context, d *models.Donation) (bool, error) {
	var (
		created  bool
		existing *models.Donation
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created, existing = false, nil
		docs, err := tx.Documents(r.byReference(d.Type, d.ProviderReference)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			existing, err = decodeDonation(docs[0])
			return err
		}
		doc := r.collection().NewDoc()
		if err := tx.Create(doc, d); err != nil {
			return err
		}
		d.ID = doc.ID
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if existing != nil {
		*d = *existing
	}
	return created, nil
}

func (r *FirestoreDonationRepository) FindByProviderReference(ctx context.Context, donationType, ref string) (*models.Donation, error) {
	docs, err := r.byReference(donationType, ref).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDonationNotFound
	}
	return decodeDonation(docs[0])
}

func (r *FirestoreDonationRepository) MarkWebhookConfirmed(ctx context.Context, id string, at time.Time) error {
	_, err := r.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "webhookConfirmed", Value: true},
		{Path: "webhookConfirmedAt", Value: at},
	})
	if status.Code(err) == codes.NotFound {
		return ErrDonationNotFound
	}
	return err
}

func (r *FirestoreDonationRepository) ListByType(ctx context.Context, donationType string) ([]models.Donation, error) {
	docs, err := r.collection().Where("type", "==", donationType).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	list := make([]models.Donation, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeDonation(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, nil
}

func decodeDonation(doc *firestore.DocumentSnapshot) (*models.Donation, error) {
	var d models.Donation
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode donation %s: %w", doc.Ref.ID, err)
	}
	d.ID = doc.Ref.ID
	return &d, nil
}
