// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package model

import "time"

// User is an identity bound to an external OAuth profile. Profile fields are
// copied once at first sign-in.
type User struct {
	ID       int64  `json:"id"`
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

// PublicProfile is what the browser gets to see about the signed-in user.
type PublicProfile struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

// Profile is the provider side view of an account.
type Profile struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Emails      []ProfileValue `json:"emails,omitempty"`
	Photos      []ProfileValue `json:"photos,omitempty"`
}

type ProfileValue struct {
	Value string `json:"value"`
}

// Email returns the primary address or an empty string.
func (p *Profile) Email() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0].Value
}

// Picture returns the primary photo url or an empty string.
func (p *Profile) Picture() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0].Value
}

// NewUser creates the user record for a first sign-in at now.
func NewUser(p *Profile, now time.Time) *User {
	return &User{
		ID:       now.UnixMilli(),
		GoogleID: p.ID,
		Email:    p.Email(),
		Name:     p.DisplayName,
		Picture:  p.Picture(),
	}
}

func FindUserByGoogleID(users []*User, googleID string) *User {
	for _, u := range users {
		if u.GoogleID == googleID {
			return u
		}
	}
	return nil
}

func FindUserByID(users []*User, id int64) *User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FreeUserID returns id, or the next larger value not yet taken in users.
func FreeUserID(users []*User, id int64) int64 {
	for FindUserByID(users, id) != nil {
		id++
	}
	return id
}
