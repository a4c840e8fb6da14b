package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

var ErrResultWithoutID = errors.New("result has no id")

const (
	resultKeyPrefix = "result:"
	recentResultKey = "results"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	GetByID(ctx context.Context, id string) (*entity.Result, error)
	ListRecent(ctx context.Context, limit int64) ([]entity.Result, error)
}

type dbResult struct {
	client *redis.Client
	limit  int64
}

// NewResultRepository - keeps at most limit results, older ones are dropped on save.
func NewResultRepository(client *redis.Client, limit int64) ResultRepository {
	return &dbResult{
		client: client,
		limit:  limit,
	}
}

func (that *dbResult) Save(ctx context.Context, result *entity.Result) error {
	if result.ID == "" {
		return ErrResultWithoutID
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	resultKey := resultKeyPrefix + result.ID

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, resultKey, resultJSON, 0)
	pipe.LPush(ctx, recentResultKey, result.ID)
	if that.limit > 0 {
		pipe.LTrim(ctx, recentResultKey, 0, that.limit-1)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

func (that *dbResult) GetByID(ctx context.Context, id string) (*entity.Result, error) {
	response, err := that.client.Get(ctx, resultKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrResultNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get result by id: %w", err)
	}

	var result entity.Result
	if err = json.Unmarshal([]byte(response), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// ListRecent - newest first. Ids whose record is gone are skipped.
func (that *dbResult) ListRecent(ctx context.Context, limit int64) ([]entity.Result, error) {
	if limit <= 0 || (that.limit > 0 && limit > that.limit) {
		limit = that.limit
	}

	ids, err := that.client.LRange(ctx, recentResultKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	if len(ids) == 0 {
		return []entity.Result{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = resultKeyPrefix + id
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	results := make([]entity.Result, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var result entity.Result
		if err = json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}
