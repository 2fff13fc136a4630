package memory

import (
	"context"
	"sync"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/google/uuid"
)

// TrackRepoInMemory guarda las pistas en proceso, en orden de inserción.
type TrackRepoInMemory struct {
	mu     sync.RWMutex
	tracks []trackDomain.TrackRecord
	index  map[uuid.UUID]int
}

func NewTrackRepoInMemory() *TrackRepoInMemory {
	return &TrackRepoInMemory{index: make(map[uuid.UUID]int)}
}

func (r *TrackRepoInMemory) Materialize(ctx context.Context, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	views := make([]trackDomain.TrackView, 0, len(r.tracks))
	for _, t := range r.tracks {
		views = append(views, trackDomain.Project(t))
	}
	r.mu.RUnlock()

	return Run(views, q)
}

func (r *TrackRepoInMemory) UpsertBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return err
		}
		if i, ok := r.index[t.ID]; ok {
			r.tracks[i] = t
			continue
		}
		r.index[t.ID] = len(r.tracks)
		r.tracks = append(r.tracks, t)
	}
	return nil
}

func (r *TrackRepoInMemory) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return trackDomain.ErrTrackNotFound
	}
	r.tracks = append(r.tracks[:i], r.tracks[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.tracks); j++ {
		r.index[r.tracks[j].ID] = j
	}
	return nil
}

func (r *TrackRepoInMemory) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.tracks)), nil
}

func (r *TrackRepoInMemory) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	r.mu.RLock()
	views := make([]trackDomain.TrackView, 0, len(r.tracks))
	for _, t := range r.tracks {
		views = append(views, trackDomain.Project(t))
	}
	r.mu.RUnlock()

	return Averages(views), nil
}

// Averages calcula las medias ignorando nulos; sin datos la media es 0.
func Averages(views []trackDomain.TrackView) trackDomain.MetricAverages {
	var avg trackDomain.MetricAverages
	targets := avg.Targets()
	for i, col := range trackDomain.AverageColumns {
		var sum float64
		var n int
		for _, v := range views {
			if fv, ok := v.Value(col); ok {
				sum += fv.Num
				n++
			}
		}
		if n > 0 {
			*targets[i] = sum / float64(n)
		}
	}
	return avg
}

// Verificación estática de la interfaz.
var (
	_ trackDomain.TrackRepository      = (*TrackRepoInMemory)(nil)
	_ trackDomain.TrackStatsRepository = (*TrackRepoInMemory)(nil)
)
