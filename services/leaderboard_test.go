package services

import (
	"testing"
	"time"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedRankedUser(t *testing.T, db *gorm.DB, identifier string, weeklyScore, weeklyReferrals int64, createdAt time.Time) {
	t.Helper()
	user := &models.User{
		ID:                  uuid.NewString(),
		Identifier:          identifier,
		Username:            identifier,
		ReferralCode:        uuid.NewString()[:8],
		WeeklyScore:         weeklyScore,
		WeeklyReferralCount: weeklyReferrals,
	}
	user.CreatedAt = createdAt
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed %s: %v", identifier, err)
	}
}

func TestTopByWeeklyScoreOrderingAndTieBreak(t *testing.T) {
	db := newTestDB(t)
	board := NewLeaderboardService(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRankedUser(t, db, "late-fifty", 50, 0, base.Add(2*time.Hour))
	seedRankedUser(t, db, "early-fifty", 50, 0, base)
	seedRankedUser(t, db, "ten", 10, 0, base)
	seedRankedUser(t, db, "five", 5, 0, base)

	entries, err := board.TopByWeeklyScore(3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	// Equal scores break on earlier account creation.
	want := []string{"early-fifty", "late-fifty", "ten"}
	for i, w := range want {
		if entries[i].Identifier != w {
			t.Fatalf("rank %d: got %s, want %s", i+1, entries[i].Identifier, w)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("rank field %d, want %d", entries[i].Rank, i+1)
		}
	}
	if entries[0].Value != 50 || entries[2].Value != 10 {
		t.Fatalf("values: %+v", entries)
	}
}

func TestTopByWeeklyScoreIsStableAcrossReads(t *testing.T) {
	db := newTestDB(t)
	board := NewLeaderboardService(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		seedRankedUser(t, db, id, 30, 0, base.Add(time.Duration(i)*time.Second))
	}

	first, err := board.TopByWeeklyScore(4)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := board.TopByWeeklyScore(4)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	for i := range first {
		if first[i].Identifier != second[i].Identifier {
			t.Fatalf("unstable ordering at %d: %s vs %s", i, first[i].Identifier, second[i].Identifier)
		}
	}
}

func TestTopByWeeklyReferrals(t *testing.T) {
	db := newTestDB(t)
	board := NewLeaderboardService(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRankedUser(t, db, "alice", 0, 4, base)
	seedRankedUser(t, db, "bob", 0, 9, base)
	seedRankedUser(t, db, "carol", 0, 1, base)

	entries, err := board.TopByWeeklyReferrals(0) // 0 falls back to the default limit
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Identifier != "bob" || entries[0].Value != 9 {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[2].Identifier != "carol" {
		t.Fatalf("last entry: %+v", entries[2])
	}
}

func TestLeaderboardReflectsWeeklyReset(t *testing.T) {
	db := newTestDB(t)
	board := NewLeaderboardService(db)
	ledger := NewLedgerService(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRankedUser(t, db, "alice", 120, 3, base)

	if _, err := ledger.ResetWeekly(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	entries, err := board.TopByWeeklyScore(10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if entries[0].Value != 0 {
		t.Fatalf("weekly value after reset = %d, want 0", entries[0].Value)
	}
}
