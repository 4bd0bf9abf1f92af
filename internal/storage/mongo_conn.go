package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	colUsers        = "users"
	colServices     = "services"
	colJobs         = "jobs"
	colApplications = "applications"
	colOrders       = "orders"
	colReviews      = "reviews"
	colCounters     = "counters"
)

var entityCollections = []string{colUsers, colServices, colJobs, colApplications, colOrders, colReviews}

// MongoConfig parameters for the MongoDB backend.
type MongoConfig struct {
	URI            string
	DBName         string
	ConnectTimeout time.Duration
}

// connectMongo dials, pings and prepares indexes and id counters.
func (s *MongoStorage) connectMongo(ctx context.Context) (*mongo.Database, error) {
	if s.cfg.URI == "" {
		return nil, errors.New("MONGODB_URI is not set")
	}
	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetWriteConcern(writeconcern.Majority())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		s.log.Printf("[mongodb] connect failed: %v", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		s.log.Printf("[mongodb] ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(s.cfg.DBName)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := seedCounters(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.log.Printf("[mongodb] connected to database %q", s.cfg.DBName)
	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range entityCollections {
		idx := []mongo.IndexModel{{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}}
		switch name {
		case colUsers:
			idx = append(idx,
				mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
				mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			)
		case colServices, colJobs:
			idx = append(idx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}})
		case colApplications:
			idx = append(idx, mongo.IndexModel{Keys: bson.D{{Key: "jobId", Value: 1}}})
		case colOrders:
			idx = append(idx,
				mongo.IndexModel{Keys: bson.D{{Key: "buyerId", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "sellerId", Value: 1}}},
			)
		case colReviews:
			idx = append(idx, mongo.IndexModel{Keys: bson.D{{Key: "serviceId", Value: 1}}})
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// seedCounters raises every id counter to at least the highest id already
// stored, so documents written before the counter existed never collide.
func seedCounters(ctx context.Context, db *mongo.Database) error {
	counters := db.Collection(colCounters)
	for _, name := range entityCollections {
		var top struct {
			ID int64 `bson:"id"`
		}
		err := db.Collection(name).FindOne(ctx, bson.M{},
			options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}).SetProjection(bson.M{"id": 1}),
		).Decode(&top)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("read max id of %s: %w", name, err)
		}
		_, err = counters.UpdateOne(ctx,
			bson.M{"_id": name},
			bson.M{"$max": bson.M{"seq": top.ID}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed counter %s: %w", name, err)
		}
	}
	return nil
}

// nextID atomically increments the counter of a collection.
func nextID(ctx context.Context, db *mongo.Database, collection string) (int, error) {
	var c struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", collection, err)
	}
	return int(c.Seq), nil
}
