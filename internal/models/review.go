package models

import "time"

type Review struct {
	ID        int       `gorm:"primaryKey" json:"id" bson:"id"`
	ServiceID int       `gorm:"not null;index" json:"serviceId" bson:"serviceId"`
	UserID    int       `gorm:"not null;index" json:"userId" bson:"userId"`
	Rating    int       `gorm:"not null" json:"rating" bson:"rating"` // 1-5
	Comment   *string   `gorm:"type:text" json:"comment" bson:"comment"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

func (r Review) Clone() Review {
	r.Comment = cloneString(r.Comment)
	return r
}

type InsertReview struct {
	ServiceID int     `json:"serviceId" validate:"required,gt=0"`
	UserID    int     `json:"userId" validate:"required,gt=0"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment"`
}

func (in InsertReview) Validate() error { return validateStruct(in) }

func (in InsertReview) Build() Review {
	return Review{
		ServiceID: in.ServiceID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Comment:   cloneString(in.Comment),
	}
}
