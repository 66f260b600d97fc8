package models

import "time"

// Preferences is the per-user UI preference bundle.
type Preferences struct {
	Theme         string `json:"theme" firestore:"theme"`
	AccentColor   string `json:"accentColor" firestore:"accentColor"`
	DefaultView   string `json:"defaultView" firestore:"defaultView"`
	Notifications bool   `json:"notifications" firestore:"notifications"`
}

// DefaultPreferences returns the preferences given to every new account.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		AccentColor:   "blue",
		DefaultView:   "daily",
		Notifications: true,
	}
}

// User represents a user in the system.
type User struct {
	ID           string      `json:"uid" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email        string      `json:"email" firestore:"email"`
	DisplayName  string      `json:"displayName,omitempty" firestore:"displayName"`
	PhotoURL     string      `json:"photoURL,omitempty" firestore:"photoURL"`
	AuthProvider string      `json:"authProvider,omitempty" firestore:"authProvider,omitempty"`
	Preferences  Preferences `json:"preferences" firestore:"preferences"`
	CreatedAt    time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" firestore:"updatedAt"`
	LastLogin    time.Time   `json:"lastLogin" firestore:"lastLogin"`
}

const (
	AuthProviderPassword = "password"
	AuthProviderGoogle   = "google"
	AuthProviderApple    = "apple"
)
