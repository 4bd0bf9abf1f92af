package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
)

// MongoStorage stores records in MongoDB keyed by the integer id field. The
// Mongo _id is never read back. Ids come from atomic counter documents.
type MongoStorage struct {
	cfg  MongoConfig
	log  *log.Logger
	conn *lazy[*mongo.Database]
}

var _ Storage = (*MongoStorage)(nil)

// NewMongoStorage returns a backend that connects on first use.
func NewMongoStorage(cfg MongoConfig, logger *log.Logger) *MongoStorage {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.DBName == "" {
		cfg.DBName = "workit"
	}
	s := &MongoStorage{cfg: cfg, log: logger}
	s.conn = newLazy(s.connectMongo)
	return s
}

func (s *MongoStorage) Backend() string { return "mongodb" }

// Connect forces the lazy connection setup.
func (s *MongoStorage) Connect(ctx context.Context) error {
	_, err := s.db(ctx)
	return err
}

func (s *MongoStorage) Close(ctx context.Context) error {
	db, ok := s.conn.Peek()
	if !ok {
		return nil
	}
	return db.Client().Disconnect(ctx)
}

func (s *MongoStorage) db(ctx context.Context) (*mongo.Database, error) {
	db, err := s.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return db, nil
}

func (s *MongoStorage) col(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

func mongoErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func byID(id int) bson.M { return bson.M{"id": id} }

func condsToBSON(conds []condition) bson.M {
	f := bson.M{}
	for _, c := range conds {
		f[c.name] = c.value
	}
	return f
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M) (*T, error) {
	var rec T
	err := col.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.M) ([]T, error) {
	cursor, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func updateOne[T any](ctx context.Context, col *mongo.Collection, id int, changes map[string]any) (*T, error) {
	if len(changes) == 0 {
		return findOne[T](ctx, col, byID(id))
	}
	var rec T
	err := col.FindOneAndUpdate(ctx, byID(id),
		bson.M{"$set": bson.M(changes)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoErr(err)
	}
	return &rec, nil
}

// insert assigns the next id, stamps the record and waits for the write
// acknowledgement before returning it.
func insert[T any](ctx context.Context, s *MongoStorage, collection string, build func(id int) T) (*T, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	id, err := nextID(ctx, db, collection)
	if err != nil {
		return nil, err
	}
	rec := build(id)
	if _, err := db.Collection(collection).InsertOne(ctx, rec); err != nil {
		s.log.Printf("[storage] insert into %s failed: %v", collection, err)
		return nil, mongoErr(err)
	}
	return &rec, nil
}

// ==== USERS ====

func (s *MongoStorage) GetUser(ctx context.Context, id int) (*models.User, error) {
	col, err := s.col(ctx, colUsers)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, col, byID(id))
}

func (s *MongoStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	col, err := s.col(ctx, colUsers)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, col, bson.M{"username": username})
}

func (s *MongoStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	col, err := s.col(ctx, colUsers)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, col, bson.M{"email": email})
}

func (s *MongoStorage) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return insert(ctx, s, colUsers, func(id int) models.User {
		u := in.Build()
		u.ID = id
		u.CreatedAt = now()
		return u
	})
}

func (s *MongoStorage) UpdateUser(ctx context.Context, id int, patch models.UserPatch) (*models.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	col, err := s.col(ctx, colUsers)
	if err != nil {
		return nil, err
	}
	return updateOne[models.User](ctx, col, id, patch.Changes())
}

// ==== SERVICES ====

func (s *MongoStorage) GetService(ctx context.Context, id int) (*models.Service, error) {
	col, err := s.col(ctx, colServices)
	if err != nil {
		return nil, err
	}
	return findOne[models.Service](ctx, col, byID(id))
}

func (s *MongoStorage) GetServices(ctx context.Context, filter Filter) ([]models.Service, error) {
	conds, err := serviceFields.compile(filter)
	if err != nil {
		return nil, err
	}
	col, err := s.col(ctx, colServices)
	if err != nil {
		return nil, err
	}
	return findMany[models.Service](ctx, col, condsToBSON(conds))
}

func (s *MongoStorage) GetUserServices(ctx context.Context, userID int) ([]models.Service, error) {
	col, err := s.col(ctx, colServices)
	if err != nil {
		return nil, err
	}
	return findMany[models.Service](ctx, col, bson.M{"userId": userID})
}

func (s *MongoStorage) CreateService(ctx context.Context, userID int, in models.InsertService) (*models.Service, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return insert(ctx, s, colServices, func(id int) models.Service {
		svc := in.Build(userID)
		svc.ID = id
		svc.CreatedAt = now()
		return svc
	})
}

func (s *MongoStorage) UpdateService(ctx context.Context, id int, patch models.ServicePatch) (*models.Service, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	col, err := s.col(ctx, colServices)
	if err != nil {
		return nil, err
	}
	return updateOne[models.Service](ctx, col, id, patch.Changes())
}

// ==== JOBS ====

func (s *MongoStorage) GetJob(ctx context.Context, id int) (*models.Job, error) {
	col, err := s.col(ctx, colJobs)
	if err != nil {
		return nil, err
	}
	return findOne[models.Job](ctx, col, byID(id))
}

func (s *MongoStorage) GetJobs(ctx context.Context, filter Filter) ([]models.Job, error) {
	conds, err := jobFields.compile(filter)
	if err != nil {
		return nil, err
	}
	col, err := s.col(ctx, colJobs)
	if err != nil {
		return nil, err
	}
	return findMany[models.Job](ctx, col, condsToBSON(conds))
}

func (s *MongoStorage) GetUserJobs(ctx context.Context, userID int) ([]models.Job, error) {
	col, err := s.col(ctx, colJobs)
	if err != nil {
		return nil, err
	}
	return findMany[models.Job](ctx, col, bson.M{"userId": userID})
}

func (s *MongoStorage) CreateJob(ctx context.Context, userID int, in models.InsertJob) (*models.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return insert(ctx, s, colJobs, func(id int) models.Job {
		job := in.Build(userID)
		job.ID = id
		job.CreatedAt = now()
		return job
	})
}

func (s *MongoStorage) UpdateJob(ctx context.Context, id int, patch models.JobPatch) (*models.Job, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	col, err := s.col(ctx, colJobs)
	if err != nil {
		return nil, err
	}
	return updateOne[models.Job](ctx, col, id, patch.Changes())
}

// ==== APPLICATIONS ====

func (s *MongoStorage) GetApplication(ctx context.Context, id int) (*models.Application, error) {
	col, err := s.col(ctx, colApplications)
	if err != nil {
		return nil, err
	}
	return findOne[models.Application](ctx, col, byID(id))
}

func (s *MongoStorage) GetApplicationsForJob(ctx context.Context, jobID int) ([]models.Application, error) {
	col, err := s.col(ctx, colApplications)
	if err != nil {
		return nil, err
	}
	return findMany[models.Application](ctx, col, bson.M{"jobId": jobID})
}

func (s *MongoStorage) GetUserApplications(ctx context.Context, userID int) ([]models.Application, error) {
	col, err := s.col(ctx, colApplications)
	if err != nil {
		return nil, err
	}
	return findMany[models.Application](ctx, col, bson.M{"userId": userID})
}

func (s *MongoStorage) CreateApplication(ctx context.Context, userID int, in models.InsertApplication) (*models.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return insert(ctx, s, colApplications, func(id int) models.Application {
		app := in.Build(userID)
		app.ID = id
		app.CreatedAt = now()
		return app
	})
}

func (s *MongoStorage) UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid application status %q", ErrValidation, status)
	}
	col, err := s.col(ctx, colApplications)
	if err != nil {
		return nil, err
	}
	return updateOne[models.Application](ctx, col, id, map[string]any{"status": string(status)})
}

// ==== ORDERS ====

func (s *MongoStorage) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	col, err := s.col(ctx, colOrders)
	if err != nil {
		return nil, err
	}
	return findOne[models.Order](ctx, col, byID(id))
}

func (s *MongoStorage) GetOrdersForService(ctx context.Context, serviceID int) ([]models.Order, error) {
	col, err := s.col(ctx, colOrders)
	if err != nil {
		return nil, err
	}
	return findMany[models.Order](ctx, col, bson.M{"serviceId": serviceID})
}

func (s *MongoStorage) GetUserOrders(ctx context.Context, userID int) ([]models.Order, error) {
	col, err := s.col(ctx, colOrders)
	if err != nil {
		return nil, err
	}
	return findMany[models.Order](ctx, col, bson.M{
		"$or": bson.A{bson.M{"buyerId": userID}, bson.M{"sellerId": userID}},
	})
}

func (s *MongoStorage) CreateOrder(ctx context.Context, in models.InsertOrder, sellerID int) (*models.Order, error) {
	if err := in.ValidateFor(sellerID); err != nil {
		return nil, err
	}
	return insert(ctx, s, colOrders, func(id int) models.Order {
		order := in.Build(sellerID)
		order.ID = id
		order.CreatedAt = now()
		return order
	})
}

func (s *MongoStorage) UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	col, err := s.col(ctx, colOrders)
	if err != nil {
		return nil, err
	}
	return updateOne[models.Order](ctx, col, id, map[string]any{"status": string(status)})
}

// ==== REVIEWS ====

func (s *MongoStorage) GetReview(ctx context.Context, id int) (*models.Review, error) {
	col, err := s.col(ctx, colReviews)
	if err != nil {
		return nil, err
	}
	return findOne[models.Review](ctx, col, byID(id))
}

func (s *MongoStorage) GetReviewsForService(ctx context.Context, serviceID int) ([]models.Review, error) {
	col, err := s.col(ctx, colReviews)
	if err != nil {
		return nil, err
	}
	return findMany[models.Review](ctx, col, bson.M{"serviceId": serviceID})
}

func (s *MongoStorage) CreateReview(ctx context.Context, in models.InsertReview) (*models.Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return insert(ctx, s, colReviews, func(id int) models.Review {
		review := in.Build()
		review.ID = id
		review.CreatedAt = now()
		return review
	})
}
