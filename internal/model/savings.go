package model

import "time"

type NewSavingsGoalData struct {
	UserId    int
	GoalCents int64
	GoalDate  time.Time
}

type SavingsGoalEntity struct {
	Id           int
	UserId       int
	GoalCents    int64
	GoalDate     time.Time
	CurrentCents int64
}

// Reached reports whether the current savings meet or exceed the goal.
func (g SavingsGoalEntity) Reached() bool {
	return g.CurrentCents >= g.GoalCents
}

// RemainingCents is the amount still missing, never negative.
func (g SavingsGoalEntity) RemainingCents() int64 {
	if rest := g.GoalCents - g.CurrentCents; rest > 0 {
		return rest
	}
	return 0
}

type CreateSavingsGoalDTO struct {
	GoalCents int64  `json:"goalCents" validate:"required,gt=0"`
	GoalDate  string `json:"goalDate" validate:"required,datetime=2006-01-02"`
}

type AddSavingsDTO struct {
	AmountCents int64 `json:"amountCents" validate:"required,gt=0"`
}

type SavingsGoalDTO struct {
	Id             int    `json:"id"`
	GoalCents      int64  `json:"goalCents"`
	CurrentCents   int64  `json:"currentCents"`
	GoalDate       string `json:"goalDate"`
	IsGoalReached  bool   `json:"isGoalReached"`
	RemainingCents int64  `json:"remainingCents"`
}
