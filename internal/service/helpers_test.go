package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"travelhub/internal/auth"
	"travelhub/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Center{},
		&model.Department{},
		&model.Request{},
		&model.Trip{},
		&model.Approval{},
		&model.Notification{},
		&model.AuditLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

// recordingDispatcher captures fan-out calls so tests can assert
// dispatch without a real notification stack. Calls arrive from
// goroutines, hence the lock.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []string
}

func (d *recordingDispatcher) record(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, name)
}

func (d *recordingDispatcher) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *recordingDispatcher) has(name string) bool {
	for _, call := range d.recorded() {
		if call == name {
			return true
		}
	}
	return false
}

func (d *recordingDispatcher) NewRequest(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	d.record("NewRequest")
}

func (d *recordingDispatcher) RequesterDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	d.record("RequesterDecision")
}

func (d *recordingDispatcher) TravelAdminsOnManagerApproval(ctx context.Context, req *model.Request) {
	d.record("TravelAdminsOnManagerApproval")
}

func (d *recordingDispatcher) BudgetCheckerRouting(ctx context.Context, req *model.Request) {
	d.record("BudgetCheckerRouting")
}

func (d *recordingDispatcher) ManagerBudgetDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor, decision string) {
	d.record("ManagerBudgetDecision")
}

func (d *recordingDispatcher) FinanceOnBudgetApproved(ctx context.Context, req *model.Request, checkerName string) {
	d.record("FinanceOnBudgetApproved")
}

func (d *recordingDispatcher) VerifiedFanOut(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	d.record("VerifiedFanOut")
}
