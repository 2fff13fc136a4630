package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/google/uuid"
)

// JSONTrackStorage es un adaptador outbound que lee pistas de un fichero JSON (array de TrackRecord).
type JSONTrackStorage struct {
	filePath string
	mu       sync.Mutex // Mutex para evitar race conditions al leer/escribir el archivo.
}

// NewJSONTrackStorage es el constructor.
func NewJSONTrackStorage(filePath string) *JSONTrackStorage {
	return &JSONTrackStorage{
		filePath: filePath,
	}
}

// GetAll recupera todas las pistas del fichero. Una pista sin id recibe uno
// derivado de nombre y fecha, así recargar el mismo fichero no duplica.
func (s *JSONTrackStorage) GetAll(ctx context.Context) ([]trackDomain.TrackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		// Si el fichero no existe, devolvemos una lista vacía sin error.
		if os.IsNotExist(err) {
			return []trackDomain.TrackRecord{}, nil
		}
		return nil, err
	}

	// Si el fichero está vacío, también devolvemos una lista vacía.
	if len(data) == 0 {
		return []trackDomain.TrackRecord{}, nil
	}

	var tracks []trackDomain.TrackRecord
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", s.filePath, err)
	}

	for i := range tracks {
		if tracks[i].ID == uuid.Nil {
			key := tracks[i].Name + "|" + tracks[i].ReleaseDate.UTC().Format(trackDomain.DateLayout)
			tracks[i].ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
		}
		if err := tracks[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed track #%d: %w", i, err)
		}
	}
	return tracks, nil
}
