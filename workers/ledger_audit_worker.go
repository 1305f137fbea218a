// workers/ledger_audit_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"task-reward-system/models"
	"task-reward-system/services"

	"gorm.io/gorm"
)

// LedgerAuditWorker periodically re-derives every user's lifetime score
// from the event log and compares it with the maintained counter. It is
// strictly read-only: drift is logged for an operator, never repaired,
// since a mismatch means a code bug rather than bad data.
type LedgerAuditWorker struct {
	db       *gorm.DB
	ledger   *services.LedgerService
	interval time.Duration
}

func NewLedgerAuditWorker(db *gorm.DB, ledger *services.LedgerService, interval time.Duration) *LedgerAuditWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &LedgerAuditWorker{db: db, ledger: ledger, interval: interval}
}

func (w *LedgerAuditWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting Ledger Audit Worker (every %s)…", w.interval)
	go w.run(ctx)
}

func (w *LedgerAuditWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.auditAll(ctx); err != nil {
				log.Printf("❌ [AUDIT] Pass failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Ledger Audit Worker stopped")
			return
		}
	}
}

func (w *LedgerAuditWorker) auditAll(ctx context.Context) error {
	var identifiers []string
	if err := w.db.WithContext(ctx).
		Model(&models.User{}).
		Pluck("identifier", &identifiers).Error; err != nil {
		return err
	}

	var drifted int
	for _, identifier := range identifiers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		counter, derived, err := w.ledger.Audit(identifier)
		if err != nil {
			log.Printf("⚠️ [AUDIT] Could not audit %s: %v", identifier, err)
			continue
		}
		if counter != derived {
			drifted++
			log.Printf("❌ [AUDIT] Score drift for %s: counter=%d derived=%d", identifier, counter, derived)
		}
	}

	if drifted == 0 {
		log.Printf("✅ [AUDIT] %d users audited, no drift", len(identifiers))
	} else {
		log.Printf("⚠️ [AUDIT] %d users audited, %d with drift", len(identifiers), drifted)
	}
	return nil
}
