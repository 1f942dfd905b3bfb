package repository

import (
	"context"
	"interviewroom/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepo_GetSummaries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("mixed id types", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "Ada"}, {Key: "email", Value: "ada@example.com"}},
			bson.D{{Key: "_id", Value: "u2"}, {Key: "name", Value: "Grace"}, {Key: "email", Value: "grace@example.com"}},
		))

		got, err := repo.GetSummaries(ctx, []string{oid.Hex(), "u2", "missing"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, model.UserSummary{ID: oid.Hex(), Name: "Ada", Email: "ada@example.com"}, got[oid.Hex()])
		assert.Equal(mt, "Grace", got["u2"].Name)
	})

	mt.Run("no ids skips the query", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)

		got, err := repo.GetSummaries(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})

	mt.Run("query failure", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "unauthorized",
			Name:    "Unauthorized",
		}))

		_, err := repo.GetSummaries(ctx, []string{"u1"})
		assert.Error(mt, err)
	})
}

func TestUserRepo_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("replaces by id", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "u1"}}}},
		))

		require.NoError(mt, repo.Upsert(ctx, model.UserSummary{ID: "u1", Name: "Ada"}))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "u1", idString("u1"))
	assert.Equal(t, "", idString(42))
}
