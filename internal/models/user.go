// internal/models/user.go
package models

import "time"

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleEmployer   Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleFreelancer || r == RoleEmployer
}

type User struct {
	ID             int       `gorm:"primaryKey" json:"id" bson:"id"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" bson:"username"`
	Email          string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"email" bson:"email"`
	Password       string    `gorm:"not null" json:"-" bson:"password"`
	Role           Role      `gorm:"type:varchar(20);not null;index" json:"role" bson:"role"`
	Bio            *string   `gorm:"type:text" json:"bio" bson:"bio"`
	ProfilePicture *string   `gorm:"type:text" json:"profilePicture" bson:"profilePicture"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	u.Bio = cloneString(u.Bio)
	u.ProfilePicture = cloneString(u.ProfilePicture)
	return u
}

type InsertUser struct {
	Username       string  `json:"username" validate:"required,min=3,max=50"`
	Email          string  `json:"email" validate:"required,email,max=150"`
	Password       string  `json:"password" validate:"required"`
	Role           Role    `json:"role" validate:"required,oneof=freelancer employer"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}

func (in InsertUser) Validate() error { return validateStruct(in) }

// UserPatch holds the mutable user fields. Password must already be hashed.
type UserPatch struct {
	Username       *string `json:"username" form:"username" validate:"omitnil,min=3,max=50"`
	Email          *string `json:"email" form:"email" validate:"omitnil,email,max=150"`
	Password       *string `json:"password" form:"password" validate:"omitnil,min=1"`
	Role           *Role   `json:"role" form:"role" validate:"omitnil,oneof=freelancer employer"`
	Bio            *string `json:"bio" form:"bio"`
	ProfilePicture *string `json:"profilePicture" form:"profilePicture"`
}

func (p UserPatch) Validate() error { return validateStruct(p) }

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Bio != nil {
		u.Bio = cloneString(p.Bio)
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = cloneString(p.ProfilePicture)
	}
}

// Changes lists the set fields keyed by their wire name.
func (p UserPatch) Changes() map[string]any {
	m := map[string]any{}
	if p.Username != nil {
		m["username"] = *p.Username
	}
	if p.Email != nil {
		m["email"] = *p.Email
	}
	if p.Password != nil {
		m["password"] = *p.Password
	}
	if p.Role != nil {
		m["role"] = string(*p.Role)
	}
	if p.Bio != nil {
		m["bio"] = *p.Bio
	}
	if p.ProfilePicture != nil {
		m["profilePicture"] = *p.ProfilePicture
	}
	return m
}

func (in InsertUser) Build() User {
	return User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
		Role:           in.Role,
		Bio:            cloneString(in.Bio),
		ProfilePicture: cloneString(in.ProfilePicture),
	}
}
