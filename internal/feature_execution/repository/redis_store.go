package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

// RedisStore mirrors snapshots into Redis. Each key holds the whole
// serialized list, so a save is a single atomic SET. No TTL: feature
// history is kept until the project is deleted.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// LoadFeatures returns the last-saved feature snapshot for a project.
func (s *RedisStore) LoadFeatures(ctx context.Context, projectID string) ([]domain.Feature, error) {
	var out []domain.Feature
	if err := s.load(ctx, featuresKey(projectID), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Feature{}
	}
	return out, nil
}

// SaveFeatures overwrites the feature snapshot for a project.
func (s *RedisStore) SaveFeatures(ctx context.Context, projectID string, features []domain.Feature) error {
	return s.save(ctx, featuresKey(projectID), features)
}

// LoadProjects returns the last-saved project snapshot for an owner.
func (s *RedisStore) LoadProjects(ctx context.Context, owner string) ([]domain.Project, error) {
	var out []domain.Project
	if err := s.load(ctx, projectsKey(owner), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Project{}
	}
	return out, nil
}

// SaveProjects overwrites the project snapshot for an owner.
func (s *RedisStore) SaveProjects(ctx context.Context, owner string, projects []domain.Project) error {
	return s.save(ctx, projectsKey(owner), projects)
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) load(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", key, err)
	}
	return nil
}
