package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"travelhub/internal/auth"
	"travelhub/internal/directory"
	"travelhub/internal/mailer"
	"travelhub/internal/model"
	"travelhub/internal/repository"
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
		&model.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

type fakePusher struct {
	mu     sync.Mutex
	pushes map[uuid.UUID]int
}

func newFakePusher() *fakePusher {
	return &fakePusher{pushes: make(map[uuid.UUID]int)}
}

func (p *fakePusher) SendToUser(userID uuid.UUID, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes[userID]++
}

func (p *fakePusher) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.pushes {
		n += c
	}
	return n
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, e := range m.sent {
		out = append(out, e.To)
	}
	return out
}

type routerFixture struct {
	db     *gorm.DB
	router *Router
	pusher *fakePusher
	mail   *fakeMailer
}

func newRouterFixture(t *testing.T) *routerFixture {
	db := setupTestDB(t)
	pusher := newFakePusher()
	mail := &fakeMailer{}
	router := New(directory.New(db), repository.NewNotificationRepository(db), pusher, mail, NewCatalog())
	return &routerFixture{db: db, router: router, pusher: pusher, mail: mail}
}

func (f *routerFixture) mkUser(t *testing.T, name, email string, roleID int, location string) model.User {
	u := model.User{FullName: name, Email: email, Password: "x", RoleID: roleID, Location: location}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *routerFixture) mkAdmin(t *testing.T, name, email string, center model.Center) model.User {
	u := model.User{FullName: name, Email: email, Password: "x", RoleID: model.RoleTravelAdministrator}
	u.CenterID = &center.ID
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *routerFixture) notificationCount(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&model.Notification{}).Count(&n).Error)
	return n
}

func testRequest(requesterID uuid.UUID, destinations ...string) *model.Request {
	trips := make([]model.Trip, 0, len(destinations))
	for _, dest := range destinations {
		trips = append(trips, model.Trip{Origin: "Lagos, Nigeria", Destination: dest, DepartureDate: time.Now()})
	}
	return &model.Request{
		ID:           uuid.New(),
		RequesterID:  requesterID,
		Name:         "Ada Lovelace",
		Status:       model.StatusApproved,
		BudgetStatus: model.StatusApproved,
		Department:   "Engineering",
		ManagerName:  "Grace Hopper",
		Location:     "Lagos",
		Trips:        trips,
	}
}

func TestRouterNewRequest(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	manager := f.mkUser(t, "Grace Hopper", "grace@e.com", model.RoleManager, "Lagos")
	requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")
	sender := auth.AuthenticatedActor{ID: requester.ID, Name: requester.FullName}

	f.router.NewRequest(ctx, testRequest(requester.ID), sender)

	var row model.Notification
	require.NoError(t, f.db.First(&row, "recipient_id = ?", manager.ID).Error)
	assert.Equal(t, model.NotificationUnread, row.Status)
	assert.Contains(t, row.Message, "submitted a travel request")
	assert.Equal(t, requester.ID, row.SenderID)

	assert.Equal(t, 1, f.pusher.total())
	assert.Equal(t, []string{"grace@e.com"}, f.mail.recipients())
}

func TestRouterNewRequestUnknownManager(t *testing.T) {
	f := newRouterFixture(t)
	requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")

	// manager cannot be resolved: logged and swallowed
	f.router.NewRequest(context.Background(), testRequest(requester.ID), auth.AuthenticatedActor{ID: requester.ID})

	assert.Zero(t, f.notificationCount(t))
	assert.Empty(t, f.mail.recipients())
}

func TestRouterVerifiedFanOut(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	kenya := model.Center{Location: "Kenya"}
	uganda := model.Center{Location: "Uganda"}
	require.NoError(t, f.db.Create(&kenya).Error)
	require.NoError(t, f.db.Create(&uganda).Error)

	f.mkAdmin(t, "Admin K1", "k1@e.com", kenya)
	f.mkAdmin(t, "Admin K2", "k2@e.com", kenya)
	f.mkAdmin(t, "Admin K3", "k3@e.com", kenya)
	f.mkAdmin(t, "Admin U1", "u1@e.com", uganda)
	f.mkAdmin(t, "Admin U2", "u2@e.com", uganda)

	manager := f.mkUser(t, "Grace Hopper", "grace@e.com", model.RoleManager, "Lagos")
	finance := f.mkUser(t, "Fin One", "fin@e.com", model.RoleFinance, "Lagos")
	requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")

	sender := auth.AuthenticatedActor{ID: uuid.New(), Name: "Alan Turing"}
	req := testRequest(requester.ID, "Nairobi, Kenya", "Kampala, Uganda")

	f.router.VerifiedFanOut(ctx, req, sender)

	// 5 destination admins in-app plus the manager
	assert.Equal(t, int64(6), f.notificationCount(t))
	assert.Equal(t, 6, f.pusher.total())

	// 5 destination admins plus finance by email, the manager not
	recipients := f.mail.recipients()
	assert.Len(t, recipients, 6)
	assert.Contains(t, recipients, "fin@e.com")
	assert.NotContains(t, recipients, "grace@e.com")

	var managerRow model.Notification
	require.NoError(t, f.db.First(&managerRow, "recipient_id = ?", manager.ID).Error)
	assert.Contains(t, managerRow.Message, "verified")

	_ = finance
}

func TestRouterBudgetCheckerRouting(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	dept := model.Department{Name: "Engineering"}
	require.NoError(t, f.db.Create(&dept).Error)
	checker := model.User{FullName: "Barbara Liskov", Email: "bl@e.com", Password: "x", RoleID: model.RoleBudgetChecker, Departments: []model.Department{dept}}
	require.NoError(t, f.db.Create(&checker).Error)

	t.Run("emails the department members", func(t *testing.T) {
		f.router.BudgetCheckerRouting(ctx, testRequest(uuid.New()))
		assert.Equal(t, []string{"bl@e.com"}, f.mail.recipients())
	})

	t.Run("unknown department sends nothing", func(t *testing.T) {
		before := len(f.mail.recipients())
		req := testRequest(uuid.New())
		req.Department = "Astrology"
		f.router.BudgetCheckerRouting(ctx, req)
		assert.Len(t, f.mail.recipients(), before)
	})
}

func TestRouterSwallowsMailFailures(t *testing.T) {
	f := newRouterFixture(t)
	f.mail.err = errors.New("smtp down")

	manager := f.mkUser(t, "Grace Hopper", "grace@e.com", model.RoleManager, "Lagos")
	requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")

	// must not panic or surface the failure
	f.router.NewRequest(context.Background(), testRequest(requester.ID), auth.AuthenticatedActor{ID: requester.ID})

	// the in-app half still lands
	var row model.Notification
	require.NoError(t, f.db.First(&row, "recipient_id = ?", manager.ID).Error)
}

func TestRouterRequesterDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("announces the manager decision while the budget is open", func(t *testing.T) {
		f := newRouterFixture(t)
		requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")

		req := testRequest(requester.ID)
		req.BudgetStatus = model.StatusOpen
		f.router.RequesterDecision(ctx, req, auth.AuthenticatedActor{ID: uuid.New(), Name: "Grace Hopper"})

		var row model.Notification
		require.NoError(t, f.db.First(&row, "recipient_id = ?", requester.ID).Error)
		assert.Contains(t, row.Message, "approved your request")
		assert.Equal(t, []string{"ada@e.com"}, f.mail.recipients())
	})

	t.Run("announces the budget decision once that axis moved", func(t *testing.T) {
		f := newRouterFixture(t)
		requester := f.mkUser(t, "Ada Lovelace", "ada@e.com", model.RoleRequester, "Lagos")

		req := testRequest(requester.ID)
		req.BudgetStatus = model.StatusRejected
		f.router.RequesterDecision(ctx, req, auth.AuthenticatedActor{ID: uuid.New(), Name: "Barbara Liskov"})

		var row model.Notification
		require.NoError(t, f.db.First(&row, "recipient_id = ?", requester.ID).Error)
		assert.Contains(t, row.Message, "rejected the request")
		assert.Equal(t, []string{"ada@e.com"}, f.mail.recipients())
	})
}

func TestRouterManagerBudgetDecisionMissingManager(t *testing.T) {
	f := newRouterFixture(t)
	req := testRequest(uuid.New())
	req.ManagerName = "Nobody Here"

	f.router.ManagerBudgetDecision(context.Background(), req, auth.AuthenticatedActor{ID: uuid.New()}, model.StatusApproved)
	assert.Zero(t, f.notificationCount(t))
}

func TestCatalogRenderings(t *testing.T) {
	catalog := NewCatalog()
	req := testRequest(uuid.New())

	t.Run("manager decision verb follows the decision", func(t *testing.T) {
		approved := catalog.Render(ManagerDecision{Request: req, Decision: model.StatusApproved})
		rejected := catalog.Render(ManagerDecision{Request: req, Decision: model.StatusRejected})
		assert.Equal(t, "approved your request", approved.Message)
		assert.Equal(t, "rejected your request", rejected.Message)
	})

	t.Run("links point at the request views", func(t *testing.T) {
		r := catalog.Render(BudgetCheckerRouting{Request: req})
		assert.Contains(t, r.Link, "/requests/budgets/")
		r = catalog.Render(TravelAdminManagerApproval{Request: req})
		assert.Contains(t, r.Link, "/requests/my-verifications/")
	})

	t.Run("finance subject names the requester", func(t *testing.T) {
		r := catalog.Render(FinanceBudgetApproved{Request: req, BudgetCheckerName: "Barbara Liskov"})
		assert.Contains(t, r.Subject, "Ada Lovelace")
		assert.Contains(t, r.Message, "Barbara Liskov")
	})
}
