package models

import "time"

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	return s == JobOpen || s == JobClosed
}

type Job struct {
	ID          int       `gorm:"primaryKey" json:"id" bson:"id"`
	UserID      int       `gorm:"not null;index" json:"userId" bson:"userId"`
	Title       string    `gorm:"not null" json:"title" bson:"title"`
	Description string    `gorm:"type:text;not null" json:"description" bson:"description"`
	Budget      float64   `gorm:"not null" json:"budget" bson:"budget"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category" bson:"category"`
	Location    *string   `gorm:"type:varchar(150)" json:"location" bson:"location"`
	JobType     string    `gorm:"type:varchar(50);not null" json:"jobType" bson:"jobType"`
	Status      JobStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status" bson:"status"`
	Image       *string   `gorm:"type:text" json:"image" bson:"image"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

func (j Job) Clone() Job {
	j.Location = cloneString(j.Location)
	j.Image = cloneString(j.Image)
	return j
}

type InsertJob struct {
	Title       string    `json:"title" form:"title" validate:"required"`
	Description string    `json:"description" form:"description" validate:"required"`
	Budget      float64   `json:"budget" form:"budget" validate:"gte=0"`
	Category    string    `json:"category" form:"category" validate:"required"`
	Location    *string   `json:"location" form:"location"`
	JobType     string    `json:"jobType" form:"jobType" validate:"required"`
	Status      JobStatus `json:"status" form:"status" validate:"omitempty,oneof=open closed"`
	Image       *string   `json:"image" form:"image"`
}

func (in InsertJob) Validate() error { return validateStruct(in) }

func (in InsertJob) Build(userID int) Job {
	status := in.Status
	if status == "" {
		status = JobOpen
	}
	return Job{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Category:    in.Category,
		Location:    cloneString(in.Location),
		JobType:     in.JobType,
		Status:      status,
		Image:       cloneString(in.Image),
	}
}

type JobPatch struct {
	Title       *string    `json:"title" form:"title" validate:"omitnil,min=1"`
	Description *string    `json:"description" form:"description" validate:"omitnil,min=1"`
	Budget      *float64   `json:"budget" form:"budget" validate:"omitnil,gte=0"`
	Category    *string    `json:"category" form:"category" validate:"omitnil,min=1"`
	Location    *string    `json:"location" form:"location"`
	JobType     *string    `json:"jobType" form:"jobType" validate:"omitnil,min=1"`
	Status      *JobStatus `json:"status" form:"status" validate:"omitnil,oneof=open closed"`
	Image       *string    `json:"image" form:"image"`
}

func (p JobPatch) Validate() error { return validateStruct(p) }

func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Budget != nil {
		j.Budget = *p.Budget
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Location != nil {
		j.Location = cloneString(p.Location)
	}
	if p.JobType != nil {
		j.JobType = *p.JobType
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Image != nil {
		j.Image = cloneString(p.Image)
	}
}

func (p JobPatch) Changes() map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Budget != nil {
		m["budget"] = *p.Budget
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Location != nil {
		m["location"] = *p.Location
	}
	if p.JobType != nil {
		m["jobType"] = *p.JobType
	}
	if p.Status != nil {
		m["status"] = string(*p.Status)
	}
	if p.Image != nil {
		m["image"] = *p.Image
	}
	return m
}
