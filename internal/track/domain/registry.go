package domain

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	TrackUpserted = "track.upserted"
	TrackDeleted  = "track.deleted"
)

const TrackTopic = "track"
