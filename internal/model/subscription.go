package model

import "time"

type NewSubscriptionData struct {
	UserId        int
	Name          string
	AmountCents   int64
	Frequency     string
	PaymentMethod string
	DueDate       time.Time
}

type UpdateSubscriptionData struct {
	Id            int
	UserId        int
	Name          string
	AmountCents   int64
	Frequency     string
	PaymentMethod string
	DueDate       time.Time
}

type SubscriptionEntity struct {
	Id            int
	UserId        int
	Name          string
	AmountCents   int64
	Frequency     string
	PaymentMethod string
	DueDate       time.Time
	IsPaid        bool
}

// NextDueDate derives the following due date from the billing frequency.
func (s SubscriptionEntity) NextDueDate() time.Time {
	switch s.Frequency {
	case "weekly":
		return s.DueDate.AddDate(0, 0, 7)
	case "monthly":
		return s.DueDate.AddDate(0, 0, 30)
	case "yearly":
		return s.DueDate.AddDate(0, 0, 365)
	}
	return s.DueDate
}

type SubscriptionFilter struct {
	UserId int
	Month  int
	Year   int
}

type CreateSubscriptionDTO struct {
	Name          string `json:"name" validate:"required"`
	AmountCents   int64  `json:"amountCents" validate:"required,gt=0"`
	Frequency     string `json:"frequency" validate:"required,oneof=weekly monthly yearly"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	DueDate       string `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

type SubscriptionDTO struct {
	Id            int    `json:"id"`
	Name          string `json:"name"`
	AmountCents   int64  `json:"amountCents"`
	Frequency     string `json:"frequency"`
	PaymentMethod string `json:"paymentMethod"`
	DueDate       string `json:"dueDate"`
	NextDueDate   string `json:"nextDueDate"`
	IsPaid        bool   `json:"isPaid"`
}
