package models

import "time"

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	OrgID     string    `json:"orgId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	Token     string
	UserID    string
	OrgID     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthContext is the resolved identity of the current request: the
// session's user, their organization and their role in it.
type AuthContext struct {
	Token       string `json:"-"`
	UserID      string `json:"-"`
	OrgID       string `json:"-"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	OrgName     string `json:"orgName"`
	OrgJoinCode string `json:"orgJoinCode"`
	Role        string `json:"role"`
}
