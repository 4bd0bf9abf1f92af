package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Application is a freelancer's bid on a job. UserID is the applicant.
type Application struct {
	ID          int               `gorm:"primaryKey" json:"id" bson:"id"`
	JobID       int               `gorm:"not null;index" json:"jobId" bson:"jobId"`
	UserID      int               `gorm:"not null;index" json:"userId" bson:"userId"`
	Description string            `gorm:"type:text;not null" json:"description" bson:"description"`
	ResumeFile  *string           `gorm:"type:text" json:"resumeFile" bson:"resumeFile"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status" bson:"status"`
	CreatedAt   time.Time         `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

func (a Application) Clone() Application {
	a.ResumeFile = cloneString(a.ResumeFile)
	return a
}

type InsertApplication struct {
	JobID       int     `json:"jobId" form:"jobId" validate:"required,gt=0"`
	Description string  `json:"description" form:"description" validate:"required"`
	ResumeFile  *string `json:"resumeFile" form:"resumeFile"`
}

func (in InsertApplication) Validate() error { return validateStruct(in) }

// Build always starts the application as pending.
func (in InsertApplication) Build(userID int) Application {
	return Application{
		JobID:       in.JobID,
		UserID:      userID,
		Description: in.Description,
		ResumeFile:  cloneString(in.ResumeFile),
		Status:      ApplicationPending,
	}
}
