package models

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCompleted, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

type Order struct {
	ID            int           `gorm:"primaryKey" json:"id" bson:"id"`
	ServiceID     int           `gorm:"not null;index" json:"serviceId" bson:"serviceId"`
	BuyerID       int           `gorm:"not null;index" json:"buyerId" bson:"buyerId"`
	SellerID      int           `gorm:"not null;index" json:"sellerId" bson:"sellerId"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"paymentMethod" bson:"paymentMethod"`
	TotalPrice    float64       `gorm:"not null" json:"totalPrice" bson:"totalPrice"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status" bson:"status"`
	CreatedAt     time.Time     `gorm:"not null" json:"createdAt" bson:"createdAt"`
}

// InsertOrder is what a buyer submits. The seller is resolved by the caller
// from the service owner and passed to Build separately.
type InsertOrder struct {
	ServiceID     int           `json:"serviceId" validate:"required,gt=0"`
	BuyerID       int           `json:"buyerId" validate:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=card bank_transfer"`
	TotalPrice    float64       `json:"totalPrice" validate:"gte=0"`
}

func (in InsertOrder) Validate() error { return validateStruct(in) }

// ValidateFor also checks the seller resolved for this order.
func (in InsertOrder) ValidateFor(sellerID int) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if sellerID <= 0 {
		return fmt.Errorf("%w: sellerId field is required", ErrValidation)
	}
	if sellerID == in.BuyerID {
		return fmt.Errorf("%w: buyerId must differ from sellerId", ErrValidation)
	}
	return nil
}

func (in InsertOrder) Build(sellerID int) Order {
	return Order{
		ServiceID:     in.ServiceID,
		BuyerID:       in.BuyerID,
		SellerID:      sellerID,
		PaymentMethod: in.PaymentMethod,
		TotalPrice:    in.TotalPrice,
		Status:        OrderPending,
	}
}

func (o Order) Clone() Order { return o }
