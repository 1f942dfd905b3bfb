package repository

import (
	"context"
	"interviewroom/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type roomRepo struct {
	collection *mongo.Collection
}

// NewRoomRepo creates a MongoDB backed room repository
func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("interviews"),
	}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	if room.Interviewers == nil {
		room.Interviewers = []string{}
	}
	_, err := r.collection.InsertOne(ctx, room)
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) SetAssignedProblem(ctx context.Context, id, problemID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"assignedProblemId": problemID, "updatedAt": time.Now().UTC()}},
	)
	return err
}

func (r *roomRepo) AddInterviewer(ctx context.Context, id, userID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"interviewers": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	return err
}

func (r *roomRepo) SetStatus(ctx context.Context, id string, from []model.RoomStatus, to model.RoomStatus) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
