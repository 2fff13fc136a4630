package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/internal/track/infra/outbound/db/memory"
)

// TracksKey es el hash id -> JSON de TrackRecord.
const TracksKey = "metamood:tracks"

// TrackRepoRedis guarda las pistas en un hash de Redis y evalúa las consultas en proceso.
type TrackRepoRedis struct {
	client *redis.Client
}

func NewTrackRepoRedis(client *redis.Client) *TrackRepoRedis {
	return &TrackRepoRedis{client: client}
}

func (r *TrackRepoRedis) Materialize(ctx context.Context, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	views, err := r.loadViews(ctx)
	if err != nil {
		return nil, err
	}
	return memory.Run(views, q)
}

func (r *TrackRepoRedis) Count(ctx context.Context) (int64, error) {
	return r.client.HLen(ctx, TracksKey).Result()
}

func (r *TrackRepoRedis) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	views, err := r.loadViews(ctx)
	if err != nil {
		return trackDomain.MetricAverages{}, err
	}
	return memory.Averages(views), nil
}

func (r *TrackRepoRedis) UpsertBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	if len(tracks) == 0 {
		return nil
	}

	values := make([]interface{}, 0, 2*len(tracks))
	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, t.ID.String(), data)
	}
	return r.client.HSet(ctx, TracksKey, values...).Err()
}

func (r *TrackRepoRedis) DeleteByID(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.HDel(ctx, TracksKey, id.String()).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return trackDomain.ErrTrackNotFound
	}
	return nil
}

// loadViews lee el hash completo; se ordena por ID porque HGETALL no garantiza orden.
func (r *TrackRepoRedis) loadViews(ctx context.Context) ([]trackDomain.TrackView, error) {
	raw, err := r.client.HGetAll(ctx, TracksKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	views := make([]trackDomain.TrackView, 0, len(raw))
	for _, id := range ids {
		var rec trackDomain.TrackRecord
		if err := json.Unmarshal([]byte(raw[id]), &rec); err != nil {
			return nil, fmt.Errorf("invalid track %s in redis: %w", id, err)
		}
		views = append(views, trackDomain.Project(rec))
	}
	return views, nil
}

// Verificación estática de la interfaz.
var (
	_ trackDomain.TrackRepository      = (*TrackRepoRedis)(nil)
	_ trackDomain.TrackStatsRepository = (*TrackRepoRedis)(nil)
)
