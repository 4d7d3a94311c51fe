package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"  Alice@Example.COM ", "alice@example.com"},
		{"\tBOB@x.io\n", "bob@x.io"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "$2a$12$secret"}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Errorf("User JSON leaks the digest: %s", b)
	}
}

func TestVideo_View(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	v := Video{
		ID:          "v1",
		Title:       "Title",
		Description: "Desc",
		VideoURL:    "https://youtu.be/dQw4w9WgXcQ",
		SharedBy:    "user-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	view := v.View("alice@example.com")

	if view.SharedBy != "alice@example.com" {
		t.Errorf("SharedBy = %q, want sharer email", view.SharedBy)
	}
	if view.VideoURL != v.VideoURL || view.ID != v.ID || !view.CreatedAt.Equal(now) {
		t.Errorf("View() = %+v, fields not copied from %+v", view, v)
	}

	b, _ := json.Marshal(view)
	for _, key := range []string{`"id"`, `"title"`, `"description"`, `"videoUrl"`, `"sharedBy"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("VideoView JSON missing %s: %s", key, b)
		}
	}
}
