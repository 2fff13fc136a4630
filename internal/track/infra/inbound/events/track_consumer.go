package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	// --- Importaciones compartidas ---
	sharedEvents "github.com/davicafu/metamood/internal/shared/events"
	sharedUtils "github.com/davicafu/metamood/internal/shared/infra/utils"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
)

// TrackService es la interfaz que define los métodos que el consumidor necesita.
type TrackService interface {
	UpsertTracks(ctx context.Context, tracks []trackDomain.TrackRecord) error
	DeleteTrack(ctx context.Context, id uuid.UUID) error
}

// TrackConsumer aplica los eventos de ingesta al almacenamiento.
type TrackConsumer struct {
	service TrackService
	timeout time.Duration
	log     *zap.Logger
}

// NewTrackConsumer es el constructor.
func NewTrackConsumer(service TrackService, logger *zap.Logger) *TrackConsumer {
	return &TrackConsumer{
		service: service,
		timeout: 2 * time.Second,
		log:     logger,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
// Ambos eventos son idempotentes: upsert por ID y borrado de algo inexistente no falla.
func (c *TrackConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for track", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case trackDomain.TrackUpserted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.TrackUpserted](c.log, base.Data, func(evt sharedEvents.TrackUpserted) {
			c.withContext(ctx, evt.ID, func(ctxTrack context.Context) error {
				return c.service.UpsertTracks(ctxTrack, []trackDomain.TrackRecord{fromUpsertedEvent(evt)})
			}, "Track upserted via event")
		})

	case trackDomain.TrackDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.TrackDeleted](c.log, base.Data, func(evt sharedEvents.TrackDeleted) {
			c.withContext(ctx, evt.ID, func(ctxTrack context.Context) error {
				err := c.service.DeleteTrack(ctxTrack, evt.ID)
				if errors.Is(err, trackDomain.ErrTrackNotFound) {
					c.log.Info("Evento 'TrackDeleted' duplicado ignorado", zap.String("track_id", evt.ID.String()))
					return nil
				}
				return err
			}, "Track deleted via event")
		})

	default:
		c.log.Warn("Unknown track event type", zap.String("type", base.Type), zap.String("key", key))
	}
}

// Helper para ejecutar acción con contexto limitado y log.
func (c *TrackConsumer) withContext(ctx context.Context, id uuid.UUID, action func(ctx context.Context) error, successMsg string) {
	ctxTrack, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := action(ctxTrack); err != nil {
		c.log.Warn("Failed to process track event", zap.String("track_id", id.String()), zap.Error(err))
		return
	}
	c.log.Debug(successMsg, zap.String("track_id", id.String()))
}

func fromUpsertedEvent(evt sharedEvents.TrackUpserted) trackDomain.TrackRecord {
	return trackDomain.TrackRecord{
		ID: evt.ID, Name: evt.Name, ReleaseDate: evt.ReleaseDate.UTC(), Popularity: evt.Popularity,
		Acousticness: evt.Acousticness, Danceability: evt.Danceability, Energy: evt.Energy,
		Liveness: evt.Liveness, Loudness: evt.Loudness, Speechiness: evt.Speechiness,
		Tempo: evt.Tempo, Instrumentalness: evt.Instrumentalness, Valence: evt.Valence,
	}
}

// BackgroundConsumerChan inicia una goroutine para consumir eventos de un canal.
func BackgroundConsumerChan(ctx context.Context, ch <-chan interface{}, consumer *TrackConsumer) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				consumer.log.Info("TrackConsumer stopped")
				return
			case msg := <-ch:
				// Hacemos una aserción de tipo para asegurarnos de que es un []byte
				if payload, ok := msg.([]byte); ok {
					// La 'key' no es relevante en el bus en memoria, pasamos una vacía.
					consumer.HandleMessage(ctx, "", payload)
				}
			}
		}
	}()
}
