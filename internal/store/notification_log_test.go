package store

import (
	"context"
	"testing"
)

func TestNotificationLogStoreRecentEntries(t *testing.T) {
	db := testDB(t)
	s := NewNotificationLogStore(db)

	authorID := testAuthor(t, db)
	post := createTestPost(t, db, authorID)
	t.Cleanup(func() { db.Exec("DELETE FROM notification_log WHERE post_id = $1", post.ID) })

	s.Log(context.Background(), post.ID, "author", "delivered", "")
	s.Log(context.Background(), post.ID, "newsletter", "failed", "gateway returned 502")

	entries, err := s.RecentEntries(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}

	var delivered, failed bool
	for _, e := range entries {
		if e.PostID != post.ID {
			continue
		}
		switch e.Channel {
		case "author":
			delivered = e.Outcome == "delivered"
		case "newsletter":
			failed = e.Outcome == "failed" && e.Detail == "gateway returned 502"
		}
	}
	if !delivered {
		t.Error("author delivery missing from log")
	}
	if !failed {
		t.Error("newsletter failure missing from log")
	}
}

func TestNotificationLogStoreLimit(t *testing.T) {
	db := testDB(t)
	s := NewNotificationLogStore(db)

	authorID := testAuthor(t, db)
	post := createTestPost(t, db, authorID)
	t.Cleanup(func() { db.Exec("DELETE FROM notification_log WHERE post_id = $1", post.ID) })

	for range 3 {
		s.Log(context.Background(), post.ID, "author", "delivered", "")
	}

	entries, err := s.RecentEntries(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}
	if len(entries) > 2 {
		t.Errorf("limit ignored: got %d entries", len(entries))
	}
}
