package model

import "time"

type NewInsightData struct {
	UserId      int
	Title       string
	Content     string
	IsAutomated bool
}

type InsightEntity struct {
	Id          int
	UserId      int
	Title       string
	Content     string
	IsAutomated bool
	DatePosted  time.Time
}

type InsightDTO struct {
	Id          int    `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsAutomated bool   `json:"isAutomated"`
	DatePosted  string `json:"datePosted"`
}

type InsightPageDTO struct {
	Results    []InsightDTO `json:"results"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	TotalItems int          `json:"totalItems"`
}
