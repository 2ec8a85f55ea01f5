package model

// GuestID marks a local-only session that never reaches the API.
const GuestID = "guest"

type User struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	IsAdmin           bool   `json:"isAdmin"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

func (u User) IsGuest() bool { return u.ID == GuestID }

// NewGuest returns the synthesized guest user.
func NewGuest(name string) User {
	return User{
		ID:    GuestID,
		Name:  name,
		Email: "guest@example.com",
	}
}
