package model

import "time"

type NewTransactionData struct {
	UserId      int
	CategoryId  int
	AmountCents int64
	Description string
}

type UpdateTransactionData struct {
	Id          int
	UserId      int
	CategoryId  int
	AmountCents int64
	Description string
}

type TransactionEntity struct {
	Id          int
	UserId      int
	CategoryId  int
	AmountCents int64
	Description string
	Date        time.Time
}

type TransactionFilter struct {
	UserId     int
	StartDate  time.Time
	EndDate    time.Time
	CategoryId int
}

type CreateTransactionDTO struct {
	Category    int    `json:"category" validate:"required"`
	AmountCents int64  `json:"amountCents" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type TransactionDTO struct {
	Id          int    `json:"id"`
	Category    int    `json:"category"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description"`
	Date        string `json:"date"`
	User        string `json:"user"`
}

type CategorySpendEntity struct {
	Category   string
	TotalCents int64
}

type SummaryEntity struct {
	IncomeCents   int64
	ExpenseCents  int64
	TopCategories []CategorySpendEntity
}

type CategorySpendDTO struct {
	Category   string `json:"category"`
	SpentCents int64  `json:"spentCents"`
}

type SummaryDTO struct {
	IncomeCents   int64              `json:"incomeCents"`
	ExpenseCents  int64              `json:"expenseCents"`
	TopCategories []CategorySpendDTO `json:"topCategories"`
}
