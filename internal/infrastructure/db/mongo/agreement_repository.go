package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

// AgreementRepository implements ports.AgreementRepository using MongoDB.
type AgreementRepository struct {
	coll *mongo.Collection
}

// NewAgreementRepository creates a new AgreementRepository.
func NewAgreementRepository(db *mongo.Database) *AgreementRepository {
	return &AgreementRepository{coll: db.Collection(collectionAgreements)}
}

type agreementDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserName    string             `bson:"userName"`
	Email       string             `bson:"email"`
	ApartmentID string             `bson:"apartmentId,omitempty"`
	FloorNo     int                `bson:"floorNo"`
	BlockName   string             `bson:"blockName"`
	ApartmentNo string             `bson:"apartmentNo"`
	Rent        float64            `bson:"rent"`
	Status      string             `bson:"status"`
	RequestedAt time.Time          `bson:"requestedAt"`
}

func (d agreementDocument) toDomain() domain.Agreement {
	return domain.Agreement{
		ID:          d.ID.Hex(),
		UserName:    d.UserName,
		Email:       d.Email,
		ApartmentID: d.ApartmentID,
		FloorNo:     d.FloorNo,
		BlockName:   d.BlockName,
		ApartmentNo: d.ApartmentNo,
		Rent:        d.Rent,
		Status:      domain.AgreementStatus(d.Status),
		RequestedAt: d.RequestedAt,
	}
}

func (r *AgreementRepository) Create(ctx context.Context, a *domain.Agreement) (*domain.InsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, agreementDocument{
		UserName:    a.UserName,
		Email:       a.Email,
		ApartmentID: a.ApartmentID,
		FloorNo:     a.FloorNo,
		BlockName:   a.BlockName,
		ApartmentNo: a.ApartmentNo,
		Rent:        a.Rent,
		Status:      string(a.Status),
		RequestedAt: a.RequestedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert agreement: %w", err)
	}
	return toInsertResult(res), nil
}

func (r *AgreementRepository) FindByID(ctx context.Context, id string) (*domain.Agreement, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail returns the first agreement filed under email.
func (r *AgreementRepository) FindByEmail(ctx context.Context, email string) (*domain.Agreement, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AgreementRepository) findOne(ctx context.Context, filter bson.M) (*domain.Agreement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc agreementDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrAgreementNotFound
		}
		return nil, fmt.Errorf("find agreement: %w", err)
	}
	a := doc.toDomain()
	return &a, nil
}

func (r *AgreementRepository) List(ctx context.Context) ([]domain.Agreement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}

	var docs []agreementDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode agreements: %w", err)
	}

	out := make([]domain.Agreement, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// SetStatus overwrites the review status. Matching zero documents is not an error.
func (r *AgreementRepository) SetStatus(ctx context.Context, id string, status domain.AgreementStatus) (*domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return nil, fmt.Errorf("update agreement status: %w", err)
	}
	return toUpdateResult(res), nil
}
