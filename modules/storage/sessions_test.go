package storage

import (
	"testing"
	"time"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

func TestSessionRepositoryInsertAndDelete(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	rec := &chat.SessionRecord{
		RoomID:   "Ab3xK9mQ",
		ConnID:   "conn-1",
		Nickname: "alice",
		Origin:   "10.0.0.1",
		JoinedAt: time.Now().UTC(),
	}
	if err := repo.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	recs, err := repo.FindByRoom("Ab3xK9mQ")
	if err != nil {
		t.Fatalf("FindByRoom failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Nickname != "alice" {
		t.Fatalf("expected one record for alice, got %+v", recs)
	}

	if err := repo.DeleteByConn("conn-1"); err != nil {
		t.Fatalf("DeleteByConn failed: %v", err)
	}

	recs, err = repo.FindByRoom("Ab3xK9mQ")
	if err != nil {
		t.Fatalf("FindByRoom after delete failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records after delete, got %d", len(recs))
	}
}

func TestSessionRepositoryDeleteUnknownConn(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	// Cleanup must be idempotent: deleting a record that was never written
	// is not an error.
	if err := repo.DeleteByConn("never-joined"); err != nil {
		t.Errorf("DeleteByConn on unknown conn returned %v", err)
	}
}
