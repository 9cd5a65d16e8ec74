package sparkbytes

import (
	"time"
)

// UserID is the identity provider's subject for a user. Right now it's a
// Firebase UID.
type UserID string

// UserProfile is the record created when a user finishes onboarding.
type UserProfile struct {
	ID      UserID `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Dietary Diet   `json:"dietary"`

	// Events lists the ids of the events this user created, oldest first.
	// It mirrors Event.CreatorID and is kept in sync by the event store.
	Events []EventID `json:"events"`

	CreatedAt time.Time `json:"createdAt"`
}

// Owns reports whether id is in the user's event list.
func (p UserProfile) Owns(id EventID) bool {
	for _, e := range p.Events {
		if e == id {
			return true
		}
	}
	return false
}

// ProfileInput holds the fields of the onboarding and profile forms.
type ProfileInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Dietary Diet   `json:"dietary"`
}
