package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/rocketscienceinc/trio-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResult(id string, o, x int) *entity.Result {
	result := entity.NewResult(entity.Score{O: o, X: x})
	result.ID = id
	result.BoardSize = 7
	result.Control = entity.PlayerControl{X: entity.Robot}
	result.FinishedAt = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

	return &result
}

func TestResultRepository_Save(t *testing.T) {
	t.Run("Save_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		// Given: a finished game
		result := newResult("123", 5, 3)

		// When: Save is called
		err := resultRepo.Save(ctx, result)

		// Then: it is stored under its id and listed
		require.NoError(t, err)

		stored, err := st.Storage.LRange(ctx, "results", 0, -1).Result()
		require.NoError(t, err)
		assert.Equal(t, []string{"123"}, stored)
	})

	t.Run("Save_WithoutID", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		// When: Save is called with a result that has no id
		err := resultRepo.Save(ctx, newResult("", 1, 1))

		// Then: nothing is stored
		require.ErrorIs(t, err, ErrResultWithoutID)
	})
}

func TestResultRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		// Given: a saved result
		result := newResult("123", 4, 6)
		require.NoError(t, resultRepo.Save(ctx, result))

		// When: GetByID is called with its id
		retrieved, err := resultRepo.GetByID(ctx, result.ID)

		// Then: the retrieved result matches the saved one
		require.NoError(t, err)
		assert.Equal(t, result.ID, retrieved.ID)
		assert.Equal(t, entity.PlayerX, retrieved.Winner)
		assert.False(t, retrieved.Tie)
		assert.Equal(t, result.Score, retrieved.Score)
		assert.Equal(t, result.Control, retrieved.Control)
		assert.True(t, result.FinishedAt.Equal(retrieved.FinishedAt))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		// When: GetByID is called with non-existent ID
		retrieved, err := resultRepo.GetByID(ctx, "9999999")

		// Then: an ErrResultNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrResultNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestResultRepository_ListRecent(t *testing.T) {
	t.Run("Newest first, trimmed to the limit", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 3)

		// Given: five saved results with a limit of three
		for i := range 5 {
			require.NoError(t, resultRepo.Save(ctx, newResult(fmt.Sprint(i), i, 0)))
		}

		// When: ListRecent asks for more than the limit
		results, err := resultRepo.ListRecent(ctx, 10)

		// Then: only the three newest are returned
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "4", results[0].ID)
		assert.Equal(t, "3", results[1].ID)
		assert.Equal(t, "2", results[2].ID)
	})

	t.Run("Smaller page", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		for i := range 4 {
			require.NoError(t, resultRepo.Save(ctx, newResult(fmt.Sprint(i), 0, i)))
		}

		results, err := resultRepo.ListRecent(ctx, 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "3", results[0].ID)
	})

	t.Run("Skips deleted records", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		require.NoError(t, resultRepo.Save(ctx, newResult("a", 1, 0)))
		require.NoError(t, resultRepo.Save(ctx, newResult("b", 0, 1)))
		require.NoError(t, st.Storage.Del(ctx, "result:a").Err())

		results, err := resultRepo.ListRecent(ctx, 0)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "b", results[0].ID)
	})

	t.Run("Empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 10)

		results, err := resultRepo.ListRecent(ctx, 5)

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
