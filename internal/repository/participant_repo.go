package repository

import (
	"context"
	"errors"
	"interviewroom/internal/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// concurrent upserts on the same key can race past the unique index once;
// the second attempt then matches the winner's document
const upsertAttempts = 2

type participantRepo struct {
	collection *mongo.Collection
}

// NewParticipantRepo creates a MongoDB backed participant ledger.
// EnsureIndexes must have created the (roomId, userId) unique index.
func NewParticipantRepo(db *mongo.Database) ParticipantRepo {
	return &participantRepo{
		collection: db.Collection("participants"),
	}
}

func pairFilter(roomID, userID string) bson.M {
	return bson.M{"roomId": roomID, "userId": userID}
}

func (r *participantRepo) Find(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	var p model.Participant
	err := r.collection.FindOne(ctx, pairFilter(roomID, userID)).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) Upsert(ctx context.Context, roomID, userID string, role model.Role, status model.ParticipantStatus) (*model.Participant, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var lastErr error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		now := time.Now().UTC()
		update := bson.M{
			"$set": bson.M{"role": role, "status": status, "updatedAt": now},
			"$setOnInsert": bson.M{
				"_id":      uuid.NewString(),
				"joinedAt": now,
			},
		}

		var p model.Participant
		err := r.collection.FindOneAndUpdate(ctx, pairFilter(roomID, userID), update, opts).Decode(&p)
		if err == nil {
			return &p, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *participantRepo) CreatePendingIfAbsent(ctx context.Context, roomID, userID string, role model.Role) (*model.Participant, bool, error) {
	// returning the pre-image tells us whether this call inserted
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var lastErr error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		now := time.Now().UTC()
		fresh := &model.Participant{
			ID:        uuid.NewString(),
			RoomID:    roomID,
			UserID:    userID,
			Role:      role,
			Status:    model.ParticipantPending,
			JoinedAt:  now,
			UpdatedAt: now,
		}
		update := bson.M{"$setOnInsert": bson.M{
			"_id":       fresh.ID,
			"role":      fresh.Role,
			"status":    fresh.Status,
			"joinedAt":  fresh.JoinedAt,
			"updatedAt": fresh.UpdatedAt,
		}}

		var existing model.Participant
		err := r.collection.FindOneAndUpdate(ctx, pairFilter(roomID, userID), update, opts).Decode(&existing)
		switch {
		case err == nil:
			return &existing, false, nil
		case errors.Is(err, mongo.ErrNoDocuments):
			return fresh, true, nil
		case mongo.IsDuplicateKeyError(err):
			lastErr = err
			continue
		default:
			return nil, false, err
		}
	}
	return nil, false, lastErr
}

func (r *participantRepo) Approve(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":    model.ParticipantApproved,
		"updatedAt": time.Now().UTC(),
	}}

	var p model.Participant
	err := r.collection.FindOneAndUpdate(ctx, pairFilter(roomID, userID), update, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) DeletePending(ctx context.Context, roomID, userID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{
		"roomId": roomID,
		"userId": userID,
		"status": model.ParticipantPending,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *participantRepo) ListPending(ctx context.Context, roomID string) ([]*model.Participant, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "joinedAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"roomId": roomID, "status": model.ParticipantPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	participants := []*model.Participant{}
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) HasApprovedInterviewer(ctx context.Context, roomID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"roomId": roomID,
		"status": model.ParticipantApproved,
		"role":   model.RoleInterviewer,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
