// Package storage defines the persistence contract of the marketplace and
// its in-memory, MongoDB and PostgreSQL implementations.
//
// Every backend honours the same rules: lookups of a missing id return a nil
// record and a nil error, lists come back ordered by id, filters are exact
// match conjunctions over known fields, and creates assign the id and the
// creation time. Returned records are copies owned by the caller.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
)

var (
	// ErrDuplicate reports a username or email that is already taken.
	ErrDuplicate = errors.New("duplicate value for unique field")
	// ErrUnknownFilter reports a filter key the entity does not have.
	ErrUnknownFilter = errors.New("unknown filter field")
	// ErrUnavailable wraps connection failures of networked backends.
	ErrUnavailable = errors.New("storage backend unavailable")
	// ErrValidation is returned for inputs that break the entity rules.
	ErrValidation = models.ErrValidation
)

// Filter selects records by exact match on the given wire field names.
// A nil or empty filter selects everything.
type Filter map[string]any

// Storage is the persistence contract shared by every backend.
type Storage interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error)
	UpdateUser(ctx context.Context, id int, patch models.UserPatch) (*models.User, error)

	GetService(ctx context.Context, id int) (*models.Service, error)
	GetServices(ctx context.Context, filter Filter) ([]models.Service, error)
	GetUserServices(ctx context.Context, userID int) ([]models.Service, error)
	CreateService(ctx context.Context, userID int, in models.InsertService) (*models.Service, error)
	UpdateService(ctx context.Context, id int, patch models.ServicePatch) (*models.Service, error)

	GetJob(ctx context.Context, id int) (*models.Job, error)
	GetJobs(ctx context.Context, filter Filter) ([]models.Job, error)
	GetUserJobs(ctx context.Context, userID int) ([]models.Job, error)
	CreateJob(ctx context.Context, userID int, in models.InsertJob) (*models.Job, error)
	UpdateJob(ctx context.Context, id int, patch models.JobPatch) (*models.Job, error)

	GetApplication(ctx context.Context, id int) (*models.Application, error)
	GetApplicationsForJob(ctx context.Context, jobID int) ([]models.Application, error)
	GetUserApplications(ctx context.Context, userID int) ([]models.Application, error)
	CreateApplication(ctx context.Context, userID int, in models.InsertApplication) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus) (*models.Application, error)

	GetOrder(ctx context.Context, id int) (*models.Order, error)
	GetOrdersForService(ctx context.Context, serviceID int) ([]models.Order, error)
	// GetUserOrders returns orders where the user is the buyer or the seller.
	GetUserOrders(ctx context.Context, userID int) ([]models.Order, error)
	CreateOrder(ctx context.Context, in models.InsertOrder, sellerID int) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error)

	GetReview(ctx context.Context, id int) (*models.Review, error)
	GetReviewsForService(ctx context.Context, serviceID int) ([]models.Review, error)
	CreateReview(ctx context.Context, in models.InsertReview) (*models.Review, error)

	// Backend names the implementation: "memory", "mongodb" or "postgres".
	Backend() string
	Close(ctx context.Context) error
}

// now is the creation clock. Millisecond precision keeps timestamps equal
// across backends since MongoDB stores no finer.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
