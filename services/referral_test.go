package services

import (
	"errors"
	"testing"

	"task-reward-system/models"
)

func TestAttachPaysFlatBonusOnce(t *testing.T) {
	db := newTestDB(t)
	referrals := NewReferralService(db)
	ledger := NewLedgerService(db)
	createUser(t, db, "alice")
	createUser(t, db, "bob")

	if err := referrals.Attach("alice", "bob"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	var alice models.User
	if err := db.Where("identifier = ?", "alice").First(&alice).Error; err != nil {
		t.Fatalf("reload alice: %v", err)
	}
	if alice.Score != ReferralBonus || alice.WeeklyScore != ReferralBonus {
		t.Fatalf("alice score=%d weekly=%d, want %d/%d", alice.Score, alice.WeeklyScore, ReferralBonus, ReferralBonus)
	}
	if alice.ReferralCount != 1 || alice.WeeklyReferralCount != 1 {
		t.Fatalf("alice counts=%d/%d, want 1/1", alice.ReferralCount, alice.WeeklyReferralCount)
	}

	var bob models.User
	if err := db.Where("identifier = ?", "bob").First(&bob).Error; err != nil {
		t.Fatalf("reload bob: %v", err)
	}
	if bob.Referrer == nil || *bob.Referrer != "alice" {
		t.Fatalf("bob.Referrer=%v, want alice", bob.Referrer)
	}
	if bob.Score != 0 {
		t.Fatalf("referred user must earn nothing, got %d", bob.Score)
	}

	var edge models.ReferralEdge
	if err := db.Where("referred_id = ?", "bob").First(&edge).Error; err != nil {
		t.Fatalf("edge: %v", err)
	}
	if edge.ReferrerID != "alice" || edge.BonusAmount != ReferralBonus {
		t.Fatalf("edge=%+v", edge)
	}

	events, err := ledger.Events("alice")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 || events[0].Source != models.ScoreSourceReferralBonus {
		t.Fatalf("events=%+v, want one referral_bonus", events)
	}
}

func TestAttachRejectsSelfReferral(t *testing.T) {
	db := newTestDB(t)
	referrals := NewReferralService(db)
	createUser(t, db, "alice")

	if err := referrals.Attach("alice", "alice"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("got %v, want ErrSelfReferral", err)
	}

	var alice models.User
	db.Where("identifier = ?", "alice").First(&alice)
	if alice.Score != 0 || alice.ReferralCount != 0 || alice.Referrer != nil {
		t.Fatalf("self referral mutated state: %+v", alice)
	}
}

func TestAttachIsOnceOnly(t *testing.T) {
	db := newTestDB(t)
	referrals := NewReferralService(db)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	createUser(t, db, "carol")

	if err := referrals.Attach("alice", "carol"); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := referrals.Attach("bob", "carol"); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("got %v, want ErrAlreadyReferred", err)
	}
	if err := referrals.Attach("alice", "carol"); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("repeat by same referrer: got %v, want ErrAlreadyReferred", err)
	}

	// Original attribution survives; bob got nothing.
	var carol, bob models.User
	db.Where("identifier = ?", "carol").First(&carol)
	db.Where("identifier = ?", "bob").First(&bob)
	if carol.Referrer == nil || *carol.Referrer != "alice" {
		t.Fatalf("carol.Referrer=%v, want alice", carol.Referrer)
	}
	if bob.Score != 0 || bob.ReferralCount != 0 {
		t.Fatalf("losing referrer was credited: %+v", bob)
	}
}

func TestAttachUnknownParties(t *testing.T) {
	db := newTestDB(t)
	referrals := NewReferralService(db)
	createUser(t, db, "alice")

	if err := referrals.Attach("ghost", "alice"); !errors.Is(err, ErrUnknownReferrer) {
		t.Fatalf("got %v, want ErrUnknownReferrer", err)
	}
	if err := referrals.Attach("alice", "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestEarningsMatchBonusEvents(t *testing.T) {
	db := newTestDB(t)
	referrals := NewReferralService(db)
	ledger := NewLedgerService(db)
	createUser(t, db, "alice")
	createUser(t, db, "bob")
	createUser(t, db, "carol")

	if err := referrals.Attach("alice", "bob"); err != nil {
		t.Fatalf("attach bob: %v", err)
	}
	if err := referrals.Attach("alice", "carol"); err != nil {
		t.Fatalf("attach carol: %v", err)
	}

	earnings, err := referrals.Earnings("alice")
	if err != nil {
		t.Fatalf("earnings: %v", err)
	}
	if earnings != 2*ReferralBonus {
		t.Fatalf("earnings=%d, want %d", earnings, 2*ReferralBonus)
	}

	// Invariant: derived earnings equal the summed referral_bonus events.
	events, _ := ledger.Events("alice")
	var sum int64
	for _, e := range events {
		if e.Source == models.ScoreSourceReferralBonus {
			sum += e.Amount
		}
	}
	if sum != earnings {
		t.Fatalf("event sum %d != earnings %d", sum, earnings)
	}

	list, err := referrals.ListReferrals("alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d referrals, want 2", len(list))
	}
}
