// internal/store/mongo.go - MongoDB-backed record store and page archive
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var mongoLogger = utils.NewComponentLogger("mongo-store")

const (
	defaultMongoDatabase = "listlift"
	archiveCollection    = "raw_pages"
	connectTimeout       = 30 * time.Second
)

// MongoStore is a record store backed by MongoDB. Each document type maps
// to its own collection with a unique index on the identity field, and
// upserts use ReplaceOne so a re-scraped record replaces the stored field
// set wholesale.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoStore connects to MongoDB and prepares the record collections
func NewMongoStore(ctx context.Context, opts Options) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "MongoDB URI is required")
	}
	database := opts.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOptions := mongooptions.Client().
		ApplyURI(opts.URI).
		SetRetryWrites(true).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoStore{
		client:   client,
		database: client.Database(database),
	}
	if err := store.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	mongoLogger.Info(fmt.Sprintf("Connected to MongoDB database %s", database))
	return store, nil
}

// ensureIndexes creates the unique identity index for each collection
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	for _, dt := range []types.DocumentType{types.DocumentBook, types.DocumentJobOffer} {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: identityField(dt), Value: 1}},
			Options: mongooptions.Index().SetUnique(true),
		}
		if _, err := s.collection(dt).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) collection(dt types.DocumentType) *mongo.Collection {
	return s.database.Collection(dt.Collection())
}

// Upsert inserts or replaces the record under its identity key
func (s *MongoStore) Upsert(ctx context.Context, record types.Record) error {
	if err := types.Validate(record); err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "rejecting record")
	}

	filter := bson.M{identityField(record.Type()): record.Key()}
	replaceOptions := mongooptions.Replace().SetUpsert(true)

	result, err := s.collection(record.Type()).ReplaceOne(ctx, filter, record, replaceOptions)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed,
			fmt.Sprintf("failed to upsert %s %s", record.Type(), record.Key()))
	}

	if result.UpsertedCount > 0 {
		mongoLogger.Debug(fmt.Sprintf("Inserted %s %s", record.Type(), record.Key()))
	} else {
		mongoLogger.Debug(fmt.Sprintf("Replaced %s %s", record.Type(), record.Key()))
	}
	return nil
}

// Get returns the record stored under the key
func (s *MongoStore) Get(ctx context.Context, dt types.DocumentType, key string) (types.Record, error) {
	result := s.collection(dt).FindOne(ctx, bson.M{identityField(dt): key})

	switch dt {
	case types.DocumentBook:
		var book types.Book
		if err := result.Decode(&book); err != nil {
			return nil, mapMongoErr(err)
		}
		return &book, nil
	case types.DocumentJobOffer:
		var offer types.JobOffer
		if err := result.Decode(&offer); err != nil {
			return nil, mapMongoErr(err)
		}
		return &offer, nil
	default:
		return nil, fmt.Errorf("unknown document type: %s", dt)
	}
}

// List returns all records of the document type
func (s *MongoStore) List(ctx context.Context, dt types.DocumentType) ([]types.Record, error) {
	cursor, err := s.collection(dt).Find(ctx, bson.M{})
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to list records")
	}
	defer cursor.Close(ctx)

	var records []types.Record
	for cursor.Next(ctx) {
		switch dt {
		case types.DocumentBook:
			var book types.Book
			if err := cursor.Decode(&book); err != nil {
				return nil, err
			}
			records = append(records, &book)
		case types.DocumentJobOffer:
			var offer types.JobOffer
			if err := cursor.Decode(&offer); err != nil {
				return nil, err
			}
			records = append(records, &offer)
		}
	}
	return records, cursor.Err()
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapMongoErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// archivedPage is the archive collection document shape
type archivedPage struct {
	SourceURL string    `bson:"source_url"`
	Body      string    `bson:"body"`
	FetchedAt time.Time `bson:"fetched_at"`
}

// MongoArchive stores raw page bodies in a dedicated collection keyed by
// source URL
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoArchive connects to MongoDB and prepares the archive collection
func NewMongoArchive(ctx context.Context, opts Options) (*MongoArchive, error) {
	if opts.URI == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "MongoDB URI is required")
	}
	database := opts.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(database).Collection(archiveCollection)
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "source_url", Value: 1}},
		Options: mongooptions.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(connectCtx, model); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("failed to create archive index: %w", err)
	}

	return &MongoArchive{client: client, collection: collection}, nil
}

// Save inserts or replaces the page under its source URL
func (a *MongoArchive) Save(ctx context.Context, page types.RawPage) error {
	if page.SourceURL == "" {
		return utils.NewError(utils.ErrCodeStoreFailed, "page has no source URL")
	}
	doc := archivedPage{
		SourceURL: page.SourceURL,
		Body:      page.Body,
		FetchedAt: page.FetchedAt,
	}
	_, err := a.collection.ReplaceOne(ctx,
		bson.M{"source_url": page.SourceURL}, doc,
		mongooptions.Replace().SetUpsert(true))
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to archive page")
	}
	return nil
}

// Load returns the archived page for the source URL
func (a *MongoArchive) Load(ctx context.Context, sourceURL string) (types.RawPage, error) {
	var doc archivedPage
	err := a.collection.FindOne(ctx, bson.M{"source_url": sourceURL}).Decode(&doc)
	if err != nil {
		return types.RawPage{}, mapMongoErr(err)
	}
	return types.RawPage{
		SourceURL: doc.SourceURL,
		Body:      doc.Body,
		FetchedAt: doc.FetchedAt,
	}, nil
}

// URLs returns the source URLs of all archived pages
func (a *MongoArchive) URLs(ctx context.Context) ([]string, error) {
	cursor, err := a.collection.Find(ctx, bson.M{},
		mongooptions.Find().SetProjection(bson.M{"source_url": 1}))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to list archive")
	}
	defer cursor.Close(ctx)

	var urls []string
	for cursor.Next(ctx) {
		var doc archivedPage
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		urls = append(urls, doc.SourceURL)
	}
	return urls, cursor.Err()
}

// Close disconnects from MongoDB
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
