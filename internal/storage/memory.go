package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
)

type cloner[T any] interface {
	Clone() T
}

// table keeps the rows of one entity in id order with its own counter.
type table[T cloner[T]] struct {
	rows  map[int]T
	order []int
	next  int
}

func newTable[T cloner[T]]() *table[T] {
	return &table[T]{rows: make(map[int]T), next: 1}
}

// insert takes the next id and stores the record built for it. Callers
// hold the write lock so id assignment and insert happen as one step.
func (t *table[T]) insert(build func(id int) T) T {
	id := t.next
	t.next++
	rec := build(id)
	t.rows[id] = rec.Clone()
	t.order = append(t.order, id)
	return rec
}

func (t *table[T]) get(id int) *T {
	rec, ok := t.rows[id]
	if !ok {
		return nil
	}
	c := rec.Clone()
	return &c
}

func (t *table[T]) put(id int, rec T) {
	t.rows[id] = rec.Clone()
}

func (t *table[T]) scan(match func(*T) bool) []T {
	out := make([]T, 0)
	for _, id := range t.order {
		rec := t.rows[id]
		if match == nil || match(&rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func (t *table[T]) first(match func(*T) bool) *T {
	for _, id := range t.order {
		rec := t.rows[id]
		if match(&rec) {
			c := rec.Clone()
			return &c
		}
	}
	return nil
}

// MemStorage keeps everything in process memory. State is lost on restart.
type MemStorage struct {
	mu           sync.RWMutex
	users        *table[models.User]
	services     *table[models.Service]
	jobs         *table[models.Job]
	applications *table[models.Application]
	orders       *table[models.Order]
	reviews      *table[models.Review]
}

var _ Storage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:        newTable[models.User](),
		services:     newTable[models.Service](),
		jobs:         newTable[models.Job](),
		applications: newTable[models.Application](),
		orders:       newTable[models.Order](),
		reviews:      newTable[models.Review](),
	}
}

func (s *MemStorage) Backend() string { return "memory" }

func (s *MemStorage) Close(context.Context) error { return nil }

// ==== USERS ====

func (s *MemStorage) GetUser(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.get(id), nil
}

func (s *MemStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.first(func(u *models.User) bool { return u.Username == username }), nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.first(func(u *models.User) bool { return u.Email == email }), nil
}

// uniqueUser checks username and email against every user except skipID.
func (s *MemStorage) uniqueUser(username, email string, skipID int) error {
	taken := s.users.first(func(u *models.User) bool {
		return u.ID != skipID && (u.Username == username || u.Email == email)
	})
	if taken == nil {
		return nil
	}
	if taken.Username == username {
		return fmt.Errorf("%w: username %q", ErrDuplicate, username)
	}
	return fmt.Errorf("%w: email %q", ErrDuplicate, email)
}

func (s *MemStorage) CreateUser(_ context.Context, in models.InsertUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.uniqueUser(in.Username, in.Email, 0); err != nil {
		return nil, err
	}
	u := s.users.insert(func(id int) models.User {
		u := in.Build()
		u.ID = id
		u.CreatedAt = now()
		return u
	})
	return &u, nil
}

func (s *MemStorage) UpdateUser(_ context.Context, id int, patch models.UserPatch) (*models.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users.get(id)
	if u == nil {
		return nil, nil
	}
	patch.Apply(u)
	if err := s.uniqueUser(u.Username, u.Email, id); err != nil {
		return nil, err
	}
	s.users.put(id, *u)
	return u, nil
}

// ==== SERVICES ====

func (s *MemStorage) GetService(_ context.Context, id int) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services.get(id), nil
}

func (s *MemStorage) GetServices(_ context.Context, filter Filter) ([]models.Service, error) {
	conds, err := serviceFields.compile(filter)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services.scan(func(rec *models.Service) bool {
		return serviceFields.matches(rec, conds)
	}), nil
}

func (s *MemStorage) GetUserServices(_ context.Context, userID int) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services.scan(func(rec *models.Service) bool { return rec.UserID == userID }), nil
}

func (s *MemStorage) CreateService(_ context.Context, userID int, in models.InsertService) (*models.Service, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := s.services.insert(func(id int) models.Service {
		svc := in.Build(userID)
		svc.ID = id
		svc.CreatedAt = now()
		return svc
	})
	return &svc, nil
}

func (s *MemStorage) UpdateService(_ context.Context, id int, patch models.ServicePatch) (*models.Service, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := s.services.get(id)
	if svc == nil {
		return nil, nil
	}
	patch.Apply(svc)
	s.services.put(id, *svc)
	return svc, nil
}

// ==== JOBS ====

func (s *MemStorage) GetJob(_ context.Context, id int) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.get(id), nil
}

func (s *MemStorage) GetJobs(_ context.Context, filter Filter) ([]models.Job, error) {
	conds, err := jobFields.compile(filter)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.scan(func(rec *models.Job) bool {
		return jobFields.matches(rec, conds)
	}), nil
}

func (s *MemStorage) GetUserJobs(_ context.Context, userID int) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs.scan(func(rec *models.Job) bool { return rec.UserID == userID }), nil
}

func (s *MemStorage) CreateJob(_ context.Context, userID int, in models.InsertJob) (*models.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs.insert(func(id int) models.Job {
		job := in.Build(userID)
		job.ID = id
		job.CreatedAt = now()
		return job
	})
	return &job, nil
}

func (s *MemStorage) UpdateJob(_ context.Context, id int, patch models.JobPatch) (*models.Job, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs.get(id)
	if job == nil {
		return nil, nil
	}
	patch.Apply(job)
	s.jobs.put(id, *job)
	return job, nil
}

// ==== APPLICATIONS ====

func (s *MemStorage) GetApplication(_ context.Context, id int) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applications.get(id), nil
}

func (s *MemStorage) GetApplicationsForJob(_ context.Context, jobID int) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applications.scan(func(rec *models.Application) bool { return rec.JobID == jobID }), nil
}

func (s *MemStorage) GetUserApplications(_ context.Context, userID int) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applications.scan(func(rec *models.Application) bool { return rec.UserID == userID }), nil
}

func (s *MemStorage) CreateApplication(_ context.Context, userID int, in models.InsertApplication) (*models.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	app := s.applications.insert(func(id int) models.Application {
		app := in.Build(userID)
		app.ID = id
		app.CreatedAt = now()
		return app
	})
	return &app, nil
}

func (s *MemStorage) UpdateApplicationStatus(_ context.Context, id int, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid application status %q", ErrValidation, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	app := s.applications.get(id)
	if app == nil {
		return nil, nil
	}
	app.Status = status
	s.applications.put(id, *app)
	return app, nil
}

// ==== ORDERS ====

func (s *MemStorage) GetOrder(_ context.Context, id int) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.get(id), nil
}

func (s *MemStorage) GetOrdersForService(_ context.Context, serviceID int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.scan(func(rec *models.Order) bool { return rec.ServiceID == serviceID }), nil
}

func (s *MemStorage) GetUserOrders(_ context.Context, userID int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.scan(func(rec *models.Order) bool {
		return rec.BuyerID == userID || rec.SellerID == userID
	}), nil
}

func (s *MemStorage) CreateOrder(_ context.Context, in models.InsertOrder, sellerID int) (*models.Order, error) {
	if err := in.ValidateFor(sellerID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.orders.insert(func(id int) models.Order {
		order := in.Build(sellerID)
		order.ID = id
		order.CreatedAt = now()
		return order
	})
	return &order, nil
}

func (s *MemStorage) UpdateOrderStatus(_ context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.orders.get(id)
	if order == nil {
		return nil, nil
	}
	order.Status = status
	s.orders.put(id, *order)
	return order, nil
}

// ==== REVIEWS ====

func (s *MemStorage) GetReview(_ context.Context, id int) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviews.get(id), nil
}

func (s *MemStorage) GetReviewsForService(_ context.Context, serviceID int) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviews.scan(func(rec *models.Review) bool { return rec.ServiceID == serviceID }), nil
}

func (s *MemStorage) CreateReview(_ context.Context, in models.InsertReview) (*models.Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	review := s.reviews.insert(func(id int) models.Review {
		review := in.Build()
		review.ID = id
		review.CreatedAt = now()
		return review
	})
	return &review, nil
}
