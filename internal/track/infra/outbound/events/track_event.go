package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/metamood/internal/shared/events"
	sharedBus "github.com/davicafu/metamood/internal/shared/infra/platform/bus"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
)

// TrackPublisher publica eventos de ingesta de pistas sobre cualquier EventBus (Kafka o memoria).
type TrackPublisher struct {
	bus sharedBus.EventBus
	log *zap.Logger
}

func NewTrackPublisher(bus sharedBus.EventBus, log *zap.Logger) *TrackPublisher {
	return &TrackPublisher{bus: bus, log: log}
}

// PublishUpserted emite un track.upserted por pista, con su ID como clave de partición.
func (p *TrackPublisher) PublishUpserted(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	for _, t := range tracks {
		evt, err := sharedEvents.NewIntegrationEvent(trackDomain.TrackUpserted, t.ID.String(), ToUpsertedEvent(t))
		if err != nil {
			return err
		}
		if err := p.bus.Publish(ctx, evt); err != nil {
			return fmt.Errorf("publish %s for track %s: %w", trackDomain.TrackUpserted, t.ID, err)
		}
	}
	p.log.Info("📤 Published track upserts", zap.Int("count", len(tracks)))
	return nil
}

func (p *TrackPublisher) PublishDeleted(ctx context.Context, id uuid.UUID) error {
	evt, err := sharedEvents.NewIntegrationEvent(trackDomain.TrackDeleted, id.String(), sharedEvents.TrackDeleted{ID: id})
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, evt)
}

// ToUpsertedEvent convierte el registro al contrato de integración.
func ToUpsertedEvent(t trackDomain.TrackRecord) sharedEvents.TrackUpserted {
	return sharedEvents.TrackUpserted{
		ID: t.ID, Name: t.Name, ReleaseDate: t.ReleaseDate, Popularity: t.Popularity,
		Acousticness: t.Acousticness, Danceability: t.Danceability, Energy: t.Energy,
		Liveness: t.Liveness, Loudness: t.Loudness, Speechiness: t.Speechiness,
		Tempo: t.Tempo, Instrumentalness: t.Instrumentalness, Valence: t.Valence,
	}
}
