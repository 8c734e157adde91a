package models

import (
	"time"
)

// User is the local account row for an identity-provider subject. The email
// is the identity key; IsAdmin gates order management and the admin realtime
// room.
type User struct {
	ID              int64      `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Name            string     `json:"name" db:"name"`
	IsAdmin         bool       `json:"isAdmin" db:"is_admin"`
	Points          int        `json:"points" db:"points"`
	Streak          int        `json:"streak" db:"streak"`
	LastLoginDate   *time.Time `json:"lastLoginDate" db:"last_login_date"`
	StreakStartDate *time.Time `json:"streakStartDate" db:"streak_start_date"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// LeaderboardEntry is a user projected onto the points leaderboard.
type LeaderboardEntry struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Points int    `json:"points" db:"points"`
	Streak int    `json:"streak" db:"streak"`
	Rank   int    `json:"rank"`
}

// StreakResult is returned by the daily check-in endpoint.
type StreakResult struct {
	Streak          int        `json:"streak"`
	Points          int        `json:"points"`
	StreakStartDate *time.Time `json:"streakStartDate"`
	LastLoginDate   *time.Time `json:"lastLoginDate"`
	Message         string     `json:"message"`
}
