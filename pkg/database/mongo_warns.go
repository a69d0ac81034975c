package database

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	warnsCollection    = "warns"
	countersCollection = "counters"
)

// MongoWarnStore keeps warns in a MongoDB collection. Ids come from a
// sequence document in the counters collection.
type MongoWarnStore struct {
	db *Database
}

// OpenMongo connects to MongoDB and ensures the warn indexes exist.
func OpenMongo(ctx context.Context, mongoURL, dbName string) (*MongoWarnStore, error) {
	if mongoURL == "" {
		return nil, fmt.Errorf("mongo: mongodbUrl is empty")
	}
	db := NewDatabase(mongoURL, dbName)
	if err := db.Connect(ctx); err != nil {
		_ = db.Disconnect()
		return nil, err
	}

	s := &MongoWarnStore{db: db}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = db.Disconnect()
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the subject and expiry indexes.
func (s *MongoWarnStore) EnsureIndexes(ctx context.Context) error {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return err
	}
	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "expires_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

// Database returns the connection manager.
func (s *MongoWarnStore) Database() *Database {
	return s.db
}

func (s *MongoWarnStore) Name() string { return KindMongo }

func (s *MongoWarnStore) nextID(ctx context.Context) (int64, error) {
	col, err := s.db.GetCollection(countersCollection)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": warnsCollection}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("mongo: next warn id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoWarnStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return 0, err
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return 0, err
	}
	w.ID = id
	w.IssuedAt = w.IssuedAt.Truncate(time.Millisecond)
	w.ExpiresAt = w.ExpiresAt.Truncate(time.Millisecond)

	if _, err := col.InsertOne(ctx, w); err != nil {
		return 0, fmt.Errorf("mongo: insert warn: %w", err)
	}
	return id, nil
}

func (s *MongoWarnStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, activeFilter(subjectID, now))
	if err != nil {
		return 0, fmt.Errorf("mongo: count active: %w", err)
	}
	return int(n), nil
}

func (s *MongoWarnStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, activeFilter(subjectID, now), opts)
}

func (s *MongoWarnStore) ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: -1}, {Key: "_id", Value: -1}})
	return s.find(ctx, bson.M{"subject_id": subjectID}, opts)
}

func (s *MongoWarnStore) Recent(ctx context.Context, limit int) ([]models.Warn, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoWarnStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return 0, err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("mongo: delete warn: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (s *MongoWarnStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	return s.deleteMany(ctx, bson.M{"subject_id": subjectID})
}

func (s *MongoWarnStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return s.deleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
}

func (s *MongoWarnStore) DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	return s.deleteMany(ctx, bson.M{"subject_id": subjectID, "expires_at": bson.M{"$lte": now}})
}

func (s *MongoWarnStore) Ping(ctx context.Context) (time.Duration, error) {
	return s.db.Ping(ctx)
}

func (s *MongoWarnStore) Stats(ctx context.Context, now time.Time) (models.WarnStats, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return models.WarnStats{}, err
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.WarnStats{}, fmt.Errorf("mongo: stats: %w", err)
	}
	active, err := col.CountDocuments(ctx, bson.M{"expires_at": bson.M{"$gt": now}})
	if err != nil {
		return models.WarnStats{}, fmt.Errorf("mongo: stats: %w", err)
	}
	subjects, err := col.Distinct(ctx, "subject_id", bson.M{})
	if err != nil {
		return models.WarnStats{}, fmt.Errorf("mongo: stats: %w", err)
	}

	return models.WarnStats{
		Total:    int(total),
		Active:   int(active),
		Expired:  int(total - active),
		Subjects: len(subjects),
	}, nil
}

func (s *MongoWarnStore) Verify(ctx context.Context) error {
	if _, err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return err
	}

	bad, err := col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"$expr": bson.M{"$lte": bson.A{"$expires_at", "$issued_at"}}},
		bson.M{"subject_id": ""},
		bson.M{"reason": ""},
	}})
	if err != nil {
		return fmt.Errorf("mongo: verify warns: %w", err)
	}
	return checkViolations(bad)
}

func (s *MongoWarnStore) Reset(ctx context.Context) (int, error) {
	return s.deleteMany(ctx, bson.M{})
}

func (s *MongoWarnStore) Close() error {
	return s.db.Disconnect()
}

func activeFilter(subjectID string, now time.Time) bson.M {
	return bson.M{"subject_id": subjectID, "expires_at": bson.M{"$gt": now}}
}

func (s *MongoWarnStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Warn, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find warns: %w", err)
	}
	defer cursor.Close(ctx)

	var warns []models.Warn
	if err := cursor.All(ctx, &warns); err != nil {
		return nil, fmt.Errorf("mongo: decode warns: %w", err)
	}
	for i := range warns {
		warns[i].IssuedAt = warns[i].IssuedAt.UTC()
		warns[i].ExpiresAt = warns[i].ExpiresAt.UTC()
	}
	return warns, nil
}

func (s *MongoWarnStore) deleteMany(ctx context.Context, filter bson.M) (int, error) {
	col, err := s.db.GetCollection(warnsCollection)
	if err != nil {
		return 0, err
	}
	res, err := col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo: delete warns: %w", err)
	}
	return int(res.DeletedCount), nil
}
