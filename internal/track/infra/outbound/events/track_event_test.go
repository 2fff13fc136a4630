package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/metamood/internal/shared/events"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/tests/mocks"
)

func TestPublishUpserted_OneEventPerTrack(t *testing.T) {
	bus := new(mocks.MockPublisher)
	tracks := mocks.SampleTracks()[:3]

	var published []sharedEvents.IntegrationEvent
	bus.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = append(published, args.Get(1).(sharedEvents.IntegrationEvent))
		}).Return(nil)

	pub := NewTrackPublisher(bus, zap.NewNop())
	require.NoError(t, pub.PublishUpserted(context.Background(), tracks))

	require.Len(t, published, 3)
	for i, evt := range published {
		assert.Equal(t, trackDomain.TrackUpserted, evt.Type)
		assert.Equal(t, tracks[i].ID.String(), evt.PartitionKey())

		var data sharedEvents.TrackUpserted
		require.NoError(t, json.Unmarshal(evt.Data, &data))
		assert.Equal(t, tracks[i].ID, data.ID)
		assert.Equal(t, tracks[i].Name, data.Name)
		assert.Equal(t, tracks[i].Popularity, data.Popularity)
	}
}

func TestPublishUpserted_StopsOnBusError(t *testing.T) {
	bus := new(mocks.MockPublisher)
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	pub := NewTrackPublisher(bus, zap.NewNop())
	err := pub.PublishUpserted(context.Background(), mocks.SampleTracks())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	bus.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublishDeleted(t *testing.T) {
	bus := new(mocks.MockPublisher)
	track := mocks.SampleTracks()[0]

	bus.On("Publish", mock.Anything, mock.MatchedBy(func(evt sharedEvents.IntegrationEvent) bool {
		var data sharedEvents.TrackDeleted
		return evt.Type == trackDomain.TrackDeleted &&
			json.Unmarshal(evt.Data, &data) == nil &&
			data.ID == track.ID
	})).Return(nil)

	pub := NewTrackPublisher(bus, zap.NewNop())
	require.NoError(t, pub.PublishDeleted(context.Background(), track.ID))
	bus.AssertExpectations(t)
}
