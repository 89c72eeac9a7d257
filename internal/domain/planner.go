package domain

import "time"

type Role string

const (
	RolePlanner Role = "排班员"
	RoleAdmin   Role = "管理员"
)

// Planner 可以登录系统并提交排班请求的用户
type Planner struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
