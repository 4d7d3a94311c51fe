package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/model"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func createTestVideo(t *testing.T, db *DB, userID, url, title string) *model.Video {
	t.Helper()
	v := &model.Video{Title: title, Description: title + " description", VideoURL: url, SharedBy: userID}
	if err := db.Videos().Create(context.Background(), v); err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}
	return v
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestVideoCreate(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")

	v := createTestVideo(t, db, alice.ID, testURL, "Never Gonna Give You Up")

	if v.ID == "" {
		t.Error("Create() did not set video.ID")
	}
	if v.CreatedAt.IsZero() {
		t.Error("Create() did not set video.CreatedAt")
	}
}

func TestVideoCreate_SameUserSameURLIsAlreadyShared(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	createTestVideo(t, db, alice.ID, testURL, "first")

	err := db.Videos().Create(context.Background(), &model.Video{
		Title: "second", VideoURL: testURL, SharedBy: alice.ID,
	})

	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
	if err.Error() != apperror.MsgAlreadyShared {
		t.Errorf("Create() error = %q, want %q", err.Error(), apperror.MsgAlreadyShared)
	}
}

func TestVideoCreate_DifferentUsersMayShareSameURL(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestVideo(t, db, alice.ID, testURL, "alice's")
	createTestVideo(t, db, bob.ID, testURL, "bob's")

	views, err := db.Videos().ListWithSharer(context.Background())
	if err != nil {
		t.Fatalf("ListWithSharer() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
}

func TestVideoCreate_UnknownUserRejected(t *testing.T) {
	db := newTestDB(t)

	// foreign_keys=ON: shared_by must reference a real user.
	err := db.Videos().Create(context.Background(), &model.Video{
		Title: "orphan", VideoURL: testURL, SharedBy: "no-such-user",
	})
	if err == nil {
		t.Fatal("Create() should fail for an unknown sharer")
	}
	if errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, a foreign key failure is not a duplicate", err)
	}
}

func TestVideoCreate_ConcurrentDuplicatesExactlyOneWins(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Videos().Create(context.Background(), &model.Video{
				Title: "race", VideoURL: testURL, SharedBy: alice.ID,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperror.ErrConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d concurrent creates succeeded, want exactly 1", succeeded)
	}
}

// =========================================================================
// EXISTS TESTS
// =========================================================================

func TestVideoExistsForUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	createTestVideo(t, db, alice.ID, testURL, "x")

	tests := []struct {
		name   string
		userID string
		url    string
		want   bool
	}{
		{"same user same url", alice.ID, testURL, true},
		{"other user same url", bob.ID, testURL, false},
		{"same user other url", alice.ID, "https://youtu.be/dQw4w9WgXcQ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Videos().ExistsForUser(context.Background(), tt.userID, tt.url)
			if err != nil {
				t.Fatalf("ExistsForUser() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExistsForUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestVideoListWithSharer_Empty(t *testing.T) {
	db := newTestDB(t)

	views, err := db.Videos().ListWithSharer(context.Background())
	if err != nil {
		t.Fatalf("ListWithSharer() error = %v", err)
	}
	// Must be an empty slice, not nil: the JSON response is "videos": [].
	if views == nil || len(views) != 0 {
		t.Errorf("ListWithSharer() = %#v, want empty non-nil slice", views)
	}
}

func TestVideoListWithSharer_NewestFirstWithEmail(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := createTestVideo(t, db, alice.ID, "https://youtu.be/aaaaaaaaaaa", "first")
	second := createTestVideo(t, db, bob.ID, "https://youtu.be/bbbbbbbbbbb", "second")
	third := createTestVideo(t, db, alice.ID, "https://youtu.be/ccccccccccc", "third")

	views, err := db.Videos().ListWithSharer(context.Background())
	if err != nil {
		t.Fatalf("ListWithSharer() error = %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("len(views) = %d, want 3", len(views))
	}

	wantOrder := []string{third.ID, second.ID, first.ID}
	for i, id := range wantOrder {
		if views[i].ID != id {
			t.Errorf("views[%d].ID = %q, want %q", i, views[i].ID, id)
		}
	}
	if views[1].SharedBy != "bob@example.com" {
		t.Errorf("views[1].SharedBy = %q, want bob's email", views[1].SharedBy)
	}
	if views[0].Description != "third description" {
		t.Errorf("views[0].Description = %q", views[0].Description)
	}
}
