package mocks

import (
	"fmt"
	"time"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/google/uuid"
)

// SampleTracks genera 15 pistas deterministas para tests de adaptadores.
// Los nombres van de "song o" a "song a" (inverso al orden de inserción),
// popularity repite valores para forzar empates y es nil en la pista 3,
// energy es nil cada cinco pistas.
func SampleTracks() []trackDomain.TrackRecord {
	tracks := make([]trackDomain.TrackRecord, 0, 15)
	for i := 0; i < 15; i++ {
		rec := trackDomain.TrackRecord{
			ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("track-%02d", i))),
			Name:         fmt.Sprintf("song %c", rune('o'-i)),
			ReleaseDate:  time.Date(2000+i%5, time.Month(1+i%12), 1+i, 0, 0, 0, 0, time.UTC),
			Popularity:   intPtr(i * 7 % 10 * 10),
			Energy:       floatPtr(float64(i) / 20),
			Danceability: floatPtr(0.5),
			Loudness:     floatPtr(-1 - float64(i)),
			Tempo:        floatPtr(90 + float64(i*5)),
			Valence:      floatPtr(float64(15-i) / 15),
		}
		if i == 3 {
			rec.Popularity = nil
		}
		if i%5 == 0 {
			rec.Energy = nil
		}
		tracks = append(tracks, rec)
	}
	return tracks
}

// DuplicateNameTracks genera cuatro pistas idénticas salvo por el ID, para
// comprobar que el orden no depende del orden de inserción ni del planificador.
func DuplicateNameTracks() []trackDomain.TrackRecord {
	base := SampleTracks()[1]
	out := make([]trackDomain.TrackRecord, 0, 4)
	for i := 0; i < 4; i++ {
		r := base
		r.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("dup-%02d", i)))
		out = append(out, r)
	}
	return out
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
