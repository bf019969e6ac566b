// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package model

import (
	"testing"
	"time"
)

func TestNewUser(t *testing.T) {
	now := time.UnixMilli(1714580000000)

	tt := []struct {
		name    string
		profile *Profile
		want    User
	}{
		{
			name: "full profile",
			profile: &Profile{
				ID:          "g-1",
				DisplayName: "Alice",
				Emails:      []ProfileValue{{Value: "alice@example.com"}, {Value: "other@example.com"}},
				Photos:      []ProfileValue{{Value: "https://example.com/a.png"}},
			},
			want: User{
				ID:       1714580000000,
				GoogleID: "g-1",
				Email:    "alice@example.com",
				Name:     "Alice",
				Picture:  "https://example.com/a.png",
			},
		},
		{
			name:    "no email and photo",
			profile: &Profile{ID: "g-2", DisplayName: "Bob"},
			want:    User{ID: 1714580000000, GoogleID: "g-2", Name: "Bob"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := NewUser(tc.profile, now)
			if *got != tc.want {
				t.Fatalf("got %+v, want %+v", *got, tc.want)
			}
		})
	}
}

func TestFindUser(t *testing.T) {
	users := []*User{{ID: 1, GoogleID: "a"}, {ID: 2, GoogleID: "b"}}

	if u := FindUserByGoogleID(users, "b"); u == nil || u.ID != 2 {
		t.Fatalf("FindUserByGoogleID(b) = %+v", u)
	}
	if u := FindUserByGoogleID(users, "c"); u != nil {
		t.Fatalf("FindUserByGoogleID(c) = %+v, want nil", u)
	}
	if u := FindUserByID(users, 1); u == nil || u.GoogleID != "a" {
		t.Fatalf("FindUserByID(1) = %+v", u)
	}
	if u := FindUserByID(nil, 1); u != nil {
		t.Fatalf("FindUserByID on nil = %+v, want nil", u)
	}
}

func TestFreeUserID(t *testing.T) {
	users := []*User{{ID: 10}, {ID: 11}, {ID: 13}}

	tt := []struct {
		id   int64
		want int64
	}{
		{id: 5, want: 5},
		{id: 10, want: 12},
		{id: 13, want: 14},
	}

	for _, tc := range tt {
		if got := FreeUserID(users, tc.id); got != tc.want {
			t.Fatalf("FreeUserID(%d) = %d, want %d", tc.id, got, tc.want)
		}
	}
}
