package models

import "time"

// User represents a user in the system
type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Password    string    `json:"-" db:"password_hash"` // Never expose in JSON
	PhotoURL    string    `json:"photoURL" db:"photo_url"`
	Bio         string    `json:"bio" db:"bio"`
	Interests   []string  `json:"interests" db:"interests"`
	Following   []string  `json:"following" db:"following"`
	Followers   []string  `json:"followers" db:"followers"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// UserResponse is what we send to clients (without sensitive data)
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Bio         string    `json:"bio"`
	Interests   []string  `json:"interests"`
	Following   []string  `json:"following"`
	Followers   []string  `json:"followers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Bio:         u.Bio,
		Interests:   emptyIfNil(u.Interests),
		Following:   emptyIfNil(u.Following),
		Followers:   emptyIfNil(u.Followers),
		CreatedAt:   u.CreatedAt,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
