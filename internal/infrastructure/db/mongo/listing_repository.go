package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

type apartmentDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Image       string             `bson:"image,omitempty"`
	FloorNo     int                `bson:"floorNo"`
	BlockName   string             `bson:"blockName"`
	ApartmentNo string             `bson:"apartmentNo"`
	Rent        float64            `bson:"rent"`
}

func (d apartmentDocument) toDomain() domain.Apartment {
	return domain.Apartment{
		ID:          d.ID.Hex(),
		Image:       d.Image,
		FloorNo:     d.FloorNo,
		BlockName:   d.BlockName,
		ApartmentNo: d.ApartmentNo,
		Rent:        d.Rent,
	}
}

// ApartmentRepository reads the apartments catalogue. Apartments are loaded
// out of band; the API never writes them.
type ApartmentRepository struct {
	coll *mongo.Collection
}

func NewApartmentRepository(db *mongo.Database) *ApartmentRepository {
	return &ApartmentRepository{coll: db.Collection(collectionApartments)}
}

func (r *ApartmentRepository) List(ctx context.Context) ([]domain.Apartment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}

	var docs []apartmentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode apartments: %w", err)
	}

	out := make([]domain.Apartment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ApartmentRepository) FindByID(ctx context.Context, id string) (*domain.Apartment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc apartmentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrApartmentNotFound
		}
		return nil, fmt.Errorf("find apartment: %w", err)
	}
	a := doc.toDomain()
	return &a, nil
}

type announcementDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type AnnouncementRepository struct {
	coll *mongo.Collection
}

func NewAnnouncementRepository(db *mongo.Database) *AnnouncementRepository {
	return &AnnouncementRepository{coll: db.Collection(collectionAnnouncements)}
}

// List returns announcements newest first.
func (r *AnnouncementRepository) List(ctx context.Context) ([]domain.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	var docs []announcementDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}

	out := make([]domain.Announcement, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Announcement{
			ID:          d.ID.Hex(),
			Title:       d.Title,
			Description: d.Description,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) (*domain.InsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, announcementDocument{
		Title:       a.Title,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert announcement: %w", err)
	}
	return toInsertResult(res), nil
}

type paymentDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Name          string             `bson:"name,omitempty"`
	FloorNo       int                `bson:"floorNo"`
	BlockName     string             `bson:"blockName"`
	ApartmentNo   string             `bson:"apartmentNo"`
	Rent          float64            `bson:"rent"`
	Month         string             `bson:"month"`
	TransactionID string             `bson:"transactionId"`
	PaidAt        time.Time          `bson:"date"`
}

type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(collectionPayments)}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) (*domain.InsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, paymentDocument{
		Email:         p.Email,
		Name:          p.Name,
		FloorNo:       p.FloorNo,
		BlockName:     p.BlockName,
		ApartmentNo:   p.ApartmentNo,
		Rent:          p.Rent,
		Month:         p.Month,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return toInsertResult(res), nil
}

// ListByEmail returns the payer's payments, most recent first.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	var docs []paymentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}

	out := make([]domain.Payment, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Payment{
			ID:            d.ID.Hex(),
			Email:         d.Email,
			Name:          d.Name,
			FloorNo:       d.FloorNo,
			BlockName:     d.BlockName,
			ApartmentNo:   d.ApartmentNo,
			Rent:          d.Rent,
			Month:         d.Month,
			TransactionID: d.TransactionID,
			PaidAt:        d.PaidAt,
		})
	}
	return out, nil
}

// AuditRepository appends role change records to the role_changes collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(collectionRoleChanges)}
}

func (r *AuditRepository) InsertRoleChange(ctx context.Context, c *domain.RoleChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"email":      c.Email,
		"role":       string(c.Role),
		"reason":     c.Reason,
		"actor":      c.Actor,
		"changed_at": c.At.UTC(),
		"written_at": time.Now().UTC(),
	}
	if c.UserID != "" {
		doc["user_id"] = c.UserID
	}
	if c.AgreementID != "" {
		doc["agreement_id"] = c.AgreementID
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert role change: %w", err)
	}
	return nil
}
