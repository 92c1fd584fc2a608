package handler

import (
	"time"

	"civreg/internal/identity/models"
	"civreg/internal/identity/service"
)

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	WardID    string `json:"ward_id,omitempty"`
	VillageID string `json:"village_id,omitempty"`
	Locked    bool   `json:"locked"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

type SessionResponse struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"`
	ClientIP   string    `json:"client_ip"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Active     bool      `json:"active"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

func toLoginResponse(res *service.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	}
}

func toUserResponse(u *models.User) UserResponse {
	out := UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		FullName: u.FullName,
		Role:     string(u.Role),
		Locked:   u.Locked,
	}
	if !u.AssignedWardID.IsNil() {
		out.WardID = u.AssignedWardID.String()
	}
	if !u.AssignedVillageID.IsNil() {
		out.VillageID = u.AssignedVillageID.String()
	}
	return out
}

func toUserListResponse(users []*models.User) UserListResponse {
	out := UserListResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, toUserResponse(u))
	}
	return out
}

func toSessionListResponse(sessions []*models.Session) SessionListResponse {
	out := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	now := time.Now().UTC()
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, SessionResponse{
			ID:         s.ID.String(),
			DeviceName: s.DeviceName,
			ClientIP:   s.ClientIP,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
			Active:     s.IsActive(now),
		})
	}
	return out
}
