package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/models"
)

const conversionsCollection = "conversions"

type MongoDB struct {
	client      *mongo.Client
	database    *mongo.Database
	conversions *mongo.Collection
}

// conversionDocument is the stored shape of a ConversionRecord. The id is
// kept as its string form so documents stay readable from the mongo shell.
type conversionDocument struct {
	ID              string    `bson:"_id"`
	VideoID         string    `bson:"video_id"`
	Title           string    `bson:"title"`
	Author          string    `bson:"author"`
	DurationSeconds int       `bson:"duration_seconds"`
	SourceURL       string    `bson:"source_url"`
	Status          string    `bson:"status"`
	ErrorCode       string    `bson:"error_code,omitempty"`
	FileSize        int64     `bson:"file_size"`
	Bitrate         int       `bson:"bitrate"`
	ArchiveKey      string    `bson:"archive_key,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
}

func NewMongoDB(cfg *config.MongoDBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	mongodb := &MongoDB{
		client:      client,
		database:    db,
		conversions: db.Collection(conversionsCollection),
	}

	if err := mongodb.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongodb, nil
}

func (m *MongoDB) Name() string {
	return config.HistoryBackendMongoDB
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "video_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	if _, err := m.conversions.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create conversions indexes: %w", err)
	}

	return nil
}

func (m *MongoDB) RecordConversion(ctx context.Context, record *models.ConversionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := m.conversions.InsertOne(ctx, toConversionDocument(record)); err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}
	return nil
}

func (m *MongoDB) ListConversions(ctx context.Context, opts models.PaginationOptions) ([]models.ConversionRecord, int, error) {
	opts = normalizePagination(opts)

	total, err := m.conversions.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count conversions: %w", err)
	}

	sortOrder := -1
	if opts.Sort == SortCreatedAtAsc {
		sortOrder = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: sortOrder}}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := m.conversions.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find conversions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []conversionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode conversions: %w", err)
	}

	conversions := make([]models.ConversionRecord, 0, len(docs))
	for _, doc := range docs {
		conversions = append(conversions, doc.toRecord())
	}

	return conversions, int(total), nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toConversionDocument(record *models.ConversionRecord) conversionDocument {
	return conversionDocument{
		ID:              record.ID.String(),
		VideoID:         record.VideoID,
		Title:           record.Title,
		Author:          record.Author,
		DurationSeconds: record.DurationSeconds,
		SourceURL:       record.SourceURL,
		Status:          string(record.Status),
		ErrorCode:       record.ErrorCode,
		FileSize:        record.FileSize,
		Bitrate:         record.Bitrate,
		ArchiveKey:      record.ArchiveKey,
		CreatedAt:       record.CreatedAt,
	}
}

func (d conversionDocument) toRecord() models.ConversionRecord {
	id, _ := uuid.Parse(d.ID)
	return models.ConversionRecord{
		ID:              id,
		VideoID:         d.VideoID,
		Title:           d.Title,
		Author:          d.Author,
		DurationSeconds: d.DurationSeconds,
		SourceURL:       d.SourceURL,
		Status:          models.ConversionStatus(d.Status),
		ErrorCode:       d.ErrorCode,
		FileSize:        d.FileSize,
		Bitrate:         d.Bitrate,
		ArchiveKey:      d.ArchiveKey,
		CreatedAt:       d.CreatedAt,
	}
}
