// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Video is one share: a YouTube URL a user posted, with the title and
// description the provider returned at share time.
//
// SharedBy holds the sharer's user ID. The pair (SharedBy, VideoURL) is
// unique: a user can share a given URL once, but two users may share the
// same URL independently.
type Video struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	VideoURL    string    `json:"videoUrl"    db:"video_url"` // stored exactly as submitted
	SharedBy    string    `json:"sharedBy"    db:"shared_by"` // user ID
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// VideoView is the public shape of a share: list entries and realtime
// "newVideo" events both use it. SharedBy is the sharer's email, not an ID.
//
// The `json:"..."` tags tell encoding/json how to name each field:
//
//	VideoView{ID: "abc", VideoURL: "https://youtu.be/..."}
//	json.Marshal(v) → {"id":"abc","videoUrl":"https://youtu.be/...",...}
type VideoView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoUrl"`
	SharedBy    string    `json:"sharedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View builds the public representation, given the sharer's email.
func (v *Video) View(sharerEmail string) VideoView {
	return VideoView{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoURL:    v.VideoURL,
		SharedBy:    sharerEmail,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
