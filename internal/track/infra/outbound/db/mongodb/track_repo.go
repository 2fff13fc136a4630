package mongodb

import (
	"context"
	"fmt"
	"time"

	// --- Importaciones del dominio y compartidas ---
	sharedDomain "github.com/davicafu/metamood/internal/shared/domain"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TrackRepoMongoDB implementa TrackRepository y TrackStatsRepository para MongoDB.
type TrackRepoMongoDB struct {
	client     *mongo.Client
	fields     *trackDomain.FieldRegistry
	tracksColl *mongo.Collection
}

// NewTrackRepoMongoDB es el constructor del repositorio.
func NewTrackRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string, fields *trackDomain.FieldRegistry) (*TrackRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	coll := client.Database(dbName).Collection("tracks")
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: trackDomain.ColumnName, Value: 1}}}); err != nil {
		return nil, fmt.Errorf("could not create tracks index: %w", err)
	}

	return &TrackRepoMongoDB{client: client, fields: fields, tracksColl: coll}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoTrack struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	ReleaseDate      time.Time `bson:"release_date"`
	Popularity       *int      `bson:"popularity"`
	Acousticness     *float64  `bson:"acousticness"`
	Danceability     *float64  `bson:"danceability"`
	Energy           *float64  `bson:"energy"`
	Instrumentalness *float64  `bson:"instrumentalness"`
	Liveness         *float64  `bson:"liveness"`
	Loudness         *float64  `bson:"loudness"`
	Speechiness      *float64  `bson:"speechiness"`
	Tempo            *float64  `bson:"tempo"`
	Valence          *float64  `bson:"valence"`
}

type mongoAverages struct {
	Acousticness     *float64 `bson:"acousticness"`
	Danceability     *float64 `bson:"danceability"`
	Energy           *float64 `bson:"energy"`
	Instrumentalness *float64 `bson:"instrumentalness"`
	Liveness         *float64 `bson:"liveness"`
	Speechiness      *float64 `bson:"speechiness"`
	Valence          *float64 `bson:"valence"`
}

// --- Lectura ---

func (r *TrackRepoMongoDB) Materialize(ctx context.Context, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	filter, err := criteriaToMongoFilter(r.fields, q.Conditions())
	if err != nil {
		return nil, err
	}
	opts, err := findOptions(r.fields, q)
	if err != nil {
		return nil, err
	}

	cursor, err := r.tracksColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := []trackDomain.TrackView{}
	for cursor.Next(ctx) {
		var mt mongoTrack
		if err := cursor.Decode(&mt); err != nil {
			return nil, err
		}
		views = append(views, trackDomain.Project(fromMongoTrack(&mt)))
	}
	return views, cursor.Err()
}

func (r *TrackRepoMongoDB) Count(ctx context.Context) (int64, error) {
	return r.tracksColl.CountDocuments(ctx, bson.D{})
}

func (r *TrackRepoMongoDB) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	group := bson.D{{Key: "_id", Value: nil}}
	for _, col := range trackDomain.AverageColumns {
		group = append(group, bson.E{Key: col, Value: bson.D{{Key: "$avg", Value: "$" + col}}})
	}

	cursor, err := r.tracksColl.Aggregate(ctx, mongo.Pipeline{{{Key: "$group", Value: group}}})
	if err != nil {
		return trackDomain.MetricAverages{}, err
	}
	defer cursor.Close(ctx)

	var out trackDomain.MetricAverages
	if !cursor.Next(ctx) {
		// Colección vacía: no hay grupo
		return out, cursor.Err()
	}
	var ma mongoAverages
	if err := cursor.Decode(&ma); err != nil {
		return out, err
	}

	targets := out.Targets()
	for i, v := range []*float64{ma.Acousticness, ma.Danceability, ma.Energy, ma.Instrumentalness, ma.Liveness, ma.Speechiness, ma.Valence} {
		if v != nil {
			*targets[i] = *v
		}
	}
	return out, nil
}

// --- Escritura ---

func (r *TrackRepoMongoDB) UpsertBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	if len(tracks) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(tracks))
	for i := range tracks {
		if err := tracks[i].Validate(); err != nil {
			return err
		}
		mt := toMongoTrack(&tracks[i])
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": mt.ID}).
			SetReplacement(mt).
			SetUpsert(true))
	}

	_, err := r.tracksColl.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *TrackRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.tracksColl.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return trackDomain.ErrTrackNotFound
	}
	return nil
}

// --- Helpers de Mapeo y Conversión ---

func toMongoTrack(t *trackDomain.TrackRecord) *mongoTrack {
	return &mongoTrack{
		ID: t.ID.String(), Name: t.Name, ReleaseDate: t.ReleaseDate.UTC(), Popularity: t.Popularity,
		Acousticness: t.Acousticness, Danceability: t.Danceability, Energy: t.Energy,
		Instrumentalness: t.Instrumentalness, Liveness: t.Liveness, Loudness: t.Loudness,
		Speechiness: t.Speechiness, Tempo: t.Tempo, Valence: t.Valence,
	}
}

func fromMongoTrack(mt *mongoTrack) trackDomain.TrackRecord {
	id, _ := uuid.Parse(mt.ID)
	return trackDomain.TrackRecord{
		ID: id, Name: mt.Name, ReleaseDate: mt.ReleaseDate.UTC(), Popularity: mt.Popularity,
		Acousticness: mt.Acousticness, Danceability: mt.Danceability, Energy: mt.Energy,
		Instrumentalness: mt.Instrumentalness, Liveness: mt.Liveness, Loudness: mt.Loudness,
		Speechiness: mt.Speechiness, Tempo: mt.Tempo, Valence: mt.Valence,
	}
}

var mongoOps = map[sharedDomain.Operator]string{
	sharedDomain.OpEq:  "$eq",
	sharedDomain.OpGt:  "$gt",
	sharedDomain.OpGte: "$gte",
	sharedDomain.OpLt:  "$lt",
	sharedDomain.OpLte: "$lte",
}

// criteriaToMongoFilter agrupa las condiciones por campo: un documento con claves
// repetidas se quedaría solo con la última.
func criteriaToMongoFilter(fields *trackDomain.FieldRegistry, conds []sharedDomain.Criterion) (bson.D, error) {
	filter := bson.D{}
	byField := map[string]bson.D{}
	var order []string

	for _, c := range conds {
		f, ok := fields.ByColumn(c.Field)
		if !ok {
			return nil, fmt.Errorf("unsupported column %q", c.Field)
		}
		mongoOp, ok := mongoOps[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		v, ok := f.Kind.ValueOf(c.Value)
		if !ok {
			return nil, fmt.Errorf("value %v does not match %s column %q", c.Value, f.Kind, f.Column)
		}

		if _, seen := byField[f.Column]; !seen {
			order = append(order, f.Column)
		}
		byField[f.Column] = append(byField[f.Column], bson.E{Key: mongoOp, Value: v.Native()})
	}

	for _, col := range order {
		filter = append(filter, bson.E{Key: col, Value: byField[col]})
	}
	return filter, nil
}

// findOptions traduce orden y ventana. Mongo ya ordena null antes que cualquier número o fecha.
func findOptions(fields *trackDomain.FieldRegistry, q trackDomain.TrackQuery) (*options.FindOptions, error) {
	opts := options.Find()

	if sorts := q.Sorts(); len(sorts) > 0 {
		sortDoc := bson.D{}
		for _, s := range sorts {
			key := s.Field
			if s.Field == trackDomain.ColumnID {
				key = "_id" // el ID se guarda como texto en _id
			} else if _, ok := fields.ByColumn(s.Field); !ok {
				return nil, fmt.Errorf("unsupported sort column %q", s.Field)
			}
			sortDir := 1 // Ascendente por defecto
			if s.Desc {
				sortDir = -1 // Descendente
			}
			sortDoc = append(sortDoc, bson.E{Key: key, Value: sortDir})
		}
		opts.SetSort(sortDoc)
	}

	if w, ok := q.Window(); ok {
		opts.SetSkip(int64(w.Offset))
		opts.SetLimit(int64(w.Limit))
	}
	return opts, nil
}

// Verificación estática de la interfaz.
var (
	_ trackDomain.TrackRepository      = (*TrackRepoMongoDB)(nil)
	_ trackDomain.TrackStatsRepository = (*TrackRepoMongoDB)(nil)
)
