package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
)

// PostgresStorage persists records through gorm. Tables are created by
// AutoMigrate on open.
type PostgresStorage struct {
	db  *gorm.DB
	log *log.Logger
}

var _ Storage = (*PostgresStorage)(nil)

// NewPostgresStorage opens the database, verifies it answers and migrates the
// schema.
func NewPostgresStorage(ctx context.Context, dsn string, logger *log.Logger) (*PostgresStorage, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", ErrUnavailable, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrUnavailable, err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Job{},
		&models.Application{},
		&models.Order{},
		&models.Review{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Printf("[storage] postgres schema ready")
	return &PostgresStorage{db: gdb, log: logger}, nil
}

func (s *PostgresStorage) Backend() string { return "postgres" }

func (s *PostgresStorage) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pe.ConstraintName)
	}
	return err
}

// utc normalises timestamps read back from timestamptz columns.
func utc(t *time.Time) { *t = t.UTC() }

func pgFirst[T any](db *gorm.DB, fix func(*T), query string, args ...any) (*T, error) {
	var rec T
	err := db.Where(query, args...).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fix(&rec)
	return &rec, nil
}

func pgFind[T any](db *gorm.DB, fix func(*T)) ([]T, error) {
	out := []T{}
	if err := db.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		fix(&out[i])
	}
	return out, nil
}

func pgWhere(db *gorm.DB, conds []condition) *gorm.DB {
	for _, c := range conds {
		db = db.Where(clause.Eq{Column: clause.Column{Name: c.column}, Value: c.value})
	}
	return db
}

// pgUpdate writes the changed columns and returns the row as stored.
func pgUpdate[T any](s *PostgresStorage, ctx context.Context, reg registry[T], fix func(*T), id int, changes map[string]any) (*T, error) {
	db := s.db.WithContext(ctx)
	if len(changes) == 0 {
		return pgFirst(db, fix, "id = ?", id)
	}
	cols, err := reg.columns(changes)
	if err != nil {
		return nil, err
	}
	var rec T
	res := db.Model(&rec).Clauses(clause.Returning{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, pgErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	fix(&rec)
	return &rec, nil
}

func pgCreate[T any](s *PostgresStorage, ctx context.Context, fix func(*T), rec T) (*T, error) {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.log.Printf("[storage] insert failed: %v", err)
		return nil, pgErr(err)
	}
	fix(&rec)
	return &rec, nil
}

func fixUser(u *models.User)               { utc(&u.CreatedAt) }
func fixService(v *models.Service)         { utc(&v.CreatedAt) }
func fixJob(j *models.Job)                 { utc(&j.CreatedAt) }
func fixApplication(a *models.Application) { utc(&a.CreatedAt) }
func fixOrder(o *models.Order)             { utc(&o.CreatedAt) }
func fixReview(r *models.Review)           { utc(&r.CreatedAt) }

// ==== USERS ====

func (s *PostgresStorage) GetUser(ctx context.Context, id int) (*models.User, error) {
	return pgFirst(s.db.WithContext(ctx), fixUser, "id = ?", id)
}

func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return pgFirst(s.db.WithContext(ctx), fixUser, "username = ?", username)
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return pgFirst(s.db.WithContext(ctx), fixUser, "email = ?", email)
}

func (s *PostgresStorage) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u := in.Build()
	u.CreatedAt = now()
	return pgCreate(s, ctx, fixUser, u)
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, id int, patch models.UserPatch) (*models.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return pgUpdate(s, ctx, userFields, fixUser, id, patch.Changes())
}

// ==== SERVICES ====

func (s *PostgresStorage) GetService(ctx context.Context, id int) (*models.Service, error) {
	return pgFirst(s.db.WithContext(ctx), fixService, "id = ?", id)
}

func (s *PostgresStorage) GetServices(ctx context.Context, filter Filter) ([]models.Service, error) {
	conds, err := serviceFields.compile(filter)
	if err != nil {
		return nil, err
	}
	return pgFind(pgWhere(s.db.WithContext(ctx), conds), fixService)
}

func (s *PostgresStorage) GetUserServices(ctx context.Context, userID int) ([]models.Service, error) {
	return pgFind(s.db.WithContext(ctx).Where("user_id = ?", userID), fixService)
}

func (s *PostgresStorage) CreateService(ctx context.Context, userID int, in models.InsertService) (*models.Service, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	svc := in.Build(userID)
	svc.CreatedAt = now()
	return pgCreate(s, ctx, fixService, svc)
}

func (s *PostgresStorage) UpdateService(ctx context.Context, id int, patch models.ServicePatch) (*models.Service, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return pgUpdate(s, ctx, serviceFields, fixService, id, patch.Changes())
}

// ==== JOBS ====

func (s *PostgresStorage) GetJob(ctx context.Context, id int) (*models.Job, error) {
	return pgFirst(s.db.WithContext(ctx), fixJob, "id = ?", id)
}

func (s *PostgresStorage) GetJobs(ctx context.Context, filter Filter) ([]models.Job, error) {
	conds, err := jobFields.compile(filter)
	if err != nil {
		return nil, err
	}
	return pgFind(pgWhere(s.db.WithContext(ctx), conds), fixJob)
}

func (s *PostgresStorage) GetUserJobs(ctx context.Context, userID int) ([]models.Job, error) {
	return pgFind(s.db.WithContext(ctx).Where("user_id = ?", userID), fixJob)
}

func (s *PostgresStorage) CreateJob(ctx context.Context, userID int, in models.InsertJob) (*models.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	job := in.Build(userID)
	job.CreatedAt = now()
	return pgCreate(s, ctx, fixJob, job)
}

func (s *PostgresStorage) UpdateJob(ctx context.Context, id int, patch models.JobPatch) (*models.Job, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return pgUpdate(s, ctx, jobFields, fixJob, id, patch.Changes())
}

// ==== APPLICATIONS ====

func (s *PostgresStorage) GetApplication(ctx context.Context, id int) (*models.Application, error) {
	return pgFirst(s.db.WithContext(ctx), fixApplication, "id = ?", id)
}

func (s *PostgresStorage) GetApplicationsForJob(ctx context.Context, jobID int) ([]models.Application, error) {
	return pgFind(s.db.WithContext(ctx).Where("job_id = ?", jobID), fixApplication)
}

func (s *PostgresStorage) GetUserApplications(ctx context.Context, userID int) ([]models.Application, error) {
	return pgFind(s.db.WithContext(ctx).Where("user_id = ?", userID), fixApplication)
}

func (s *PostgresStorage) CreateApplication(ctx context.Context, userID int, in models.InsertApplication) (*models.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	app := in.Build(userID)
	app.CreatedAt = now()
	return pgCreate(s, ctx, fixApplication, app)
}

func (s *PostgresStorage) UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid application status %q", ErrValidation, status)
	}
	return pgUpdate(s, ctx, applicationFields, fixApplication, id, map[string]any{"status": string(status)})
}

// ==== ORDERS ====

func (s *PostgresStorage) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	return pgFirst(s.db.WithContext(ctx), fixOrder, "id = ?", id)
}

func (s *PostgresStorage) GetOrdersForService(ctx context.Context, serviceID int) ([]models.Order, error) {
	return pgFind(s.db.WithContext(ctx).Where("service_id = ?", serviceID), fixOrder)
}

func (s *PostgresStorage) GetUserOrders(ctx context.Context, userID int) ([]models.Order, error) {
	return pgFind(s.db.WithContext(ctx).Where("buyer_id = ? OR seller_id = ?", userID, userID), fixOrder)
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, in models.InsertOrder, sellerID int) (*models.Order, error) {
	if err := in.ValidateFor(sellerID); err != nil {
		return nil, err
	}
	order := in.Build(sellerID)
	order.CreatedAt = now()
	return pgCreate(s, ctx, fixOrder, order)
}

func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	return pgUpdate(s, ctx, orderFields, fixOrder, id, map[string]any{"status": string(status)})
}

// ==== REVIEWS ====

func (s *PostgresStorage) GetReview(ctx context.Context, id int) (*models.Review, error) {
	return pgFirst(s.db.WithContext(ctx), fixReview, "id = ?", id)
}

func (s *PostgresStorage) GetReviewsForService(ctx context.Context, serviceID int) ([]models.Review, error) {
	return pgFind(s.db.WithContext(ctx).Where("service_id = ?", serviceID), fixReview)
}

func (s *PostgresStorage) CreateReview(ctx context.Context, in models.InsertReview) (*models.Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	review := in.Build()
	review.CreatedAt = now()
	return pgCreate(s, ctx, fixReview, review)
}
