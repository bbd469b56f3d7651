package model

import "time"

type NewBudgetData struct {
	UserId      int
	Month       time.Time
	BudgetCents int64
}

type BudgetEntity struct {
	Id          int
	UserId      int
	Month       time.Time
	BudgetCents int64
	CreatedAt   time.Time
}

type CreateBudgetDTO struct {
	Month       string `json:"month" validate:"required,datetime=2006-01-02"`
	BudgetCents int64  `json:"budgetCents" validate:"required,gt=0"`
}

type BudgetDTO struct {
	Id          int    `json:"id"`
	Month       string `json:"month"`
	BudgetCents int64  `json:"budgetCents"`
}

type BudgetStatusDTO struct {
	BudgetCents      int64 `json:"budgetCents"`
	ExpenditureCents int64 `json:"expenditureCents"`
	IsOverBudget     bool  `json:"isOverBudget"`
	RemainingCents   int64 `json:"remainingCents"`
}
