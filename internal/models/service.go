package models

import "time"

type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
)

func (s ServiceStatus) Valid() bool {
	return s == ServiceActive || s == ServiceInactive
}

// Service is a gig offered by a freelancer.
type Service struct {
	ID           int           `gorm:"primaryKey" json:"id" bson:"id"`
	UserID       int           `gorm:"not null;index" json:"userId" bson:"userId"`
	Title        string        `gorm:"not null" json:"title" bson:"title"`
	Description  string        `gorm:"type:text;not null" json:"description" bson:"description"`
	Price        float64       `gorm:"not null" json:"price" bson:"price"`
	Category     string        `gorm:"type:varchar(100);not null;index" json:"category" bson:"category"`
	Status       ServiceStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status" bson:"status"`
	Image        *string       `gorm:"type:text" json:"image" bson:"image"`
	DeliveryTime *string       `gorm:"type:varchar(50)" json:"deliveryTime" bson:"deliveryTime"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

func (s Service) Clone() Service {
	s.Image = cloneString(s.Image)
	s.DeliveryTime = cloneString(s.DeliveryTime)
	return s
}

type InsertService struct {
	Title        string        `json:"title" form:"title" validate:"required"`
	Description  string        `json:"description" form:"description" validate:"required"`
	Price        float64       `json:"price" form:"price" validate:"gte=0"`
	Category     string        `json:"category" form:"category" validate:"required"`
	Status       ServiceStatus `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
	Image        *string       `json:"image" form:"image"`
	DeliveryTime *string       `json:"deliveryTime" form:"deliveryTime"`
}

func (in InsertService) Validate() error { return validateStruct(in) }

// Build turns the insertable into a record owned by userID. Id and
// createdAt are left for storage.
func (in InsertService) Build(userID int) Service {
	status := in.Status
	if status == "" {
		status = ServiceActive
	}
	return Service{
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		Status:       status,
		Image:        cloneString(in.Image),
		DeliveryTime: cloneString(in.DeliveryTime),
	}
}

type ServicePatch struct {
	Title        *string        `json:"title" form:"title" validate:"omitnil,min=1"`
	Description  *string        `json:"description" form:"description" validate:"omitnil,min=1"`
	Price        *float64       `json:"price" form:"price" validate:"omitnil,gte=0"`
	Category     *string        `json:"category" form:"category" validate:"omitnil,min=1"`
	Status       *ServiceStatus `json:"status" form:"status" validate:"omitnil,oneof=active inactive"`
	Image        *string        `json:"image" form:"image"`
	DeliveryTime *string        `json:"deliveryTime" form:"deliveryTime"`
}

func (p ServicePatch) Validate() error { return validateStruct(p) }

func (p ServicePatch) Apply(s *Service) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Image != nil {
		s.Image = cloneString(p.Image)
	}
	if p.DeliveryTime != nil {
		s.DeliveryTime = cloneString(p.DeliveryTime)
	}
}

func (p ServicePatch) Changes() map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Status != nil {
		m["status"] = string(*p.Status)
	}
	if p.Image != nil {
		m["image"] = *p.Image
	}
	if p.DeliveryTime != nil {
		m["deliveryTime"] = *p.DeliveryTime
	}
	return m
}
