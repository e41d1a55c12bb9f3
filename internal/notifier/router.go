// Package notifier resolves recipient sets and fans business events
// out as in-app notifications and emails. Dispatch is best effort:
// resolution or delivery failures are logged and swallowed so they
// never fail the business operation that triggered them.
package notifier

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"travelhub/internal/auth"
	"travelhub/internal/directory"
	"travelhub/internal/mailer"
	"travelhub/internal/model"
	"travelhub/internal/repository"
)

// Pusher is the in-app delivery half of the messaging port, satisfied
// by the websocket hub.
type Pusher interface {
	SendToUser(userID uuid.UUID, payload []byte)
}

type Router struct {
	dir           directory.Directory
	notifications repository.NotificationRepository
	pusher        Pusher
	mail          mailer.Mailer
	catalog       Catalog
}

func New(dir directory.Directory, notifications repository.NotificationRepository, pusher Pusher, mail mailer.Mailer, catalog Catalog) *Router {
	return &Router{
		dir:           dir,
		notifications: notifications,
		pusher:        pusher,
		mail:          mail,
		catalog:       catalog,
	}
}

// Notify persists an in-app notification for one recipient and pushes
// it over the hub.
func (r *Router) Notify(ctx context.Context, recipientID uuid.UUID, sender auth.AuthenticatedActor, event Event) {
	rendering := r.catalog.Render(event)
	row := &model.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderImage: sender.Picture,
		Type:        "general",
		Message:     rendering.Message,
		Link:        rendering.Link,
		Status:      model.NotificationUnread,
	}
	if err := r.notifications.Create(ctx, row); err != nil {
		log.Printf("notifier: persist %s for %s: %v", event.eventName(), recipientID, err)
		return
	}
	if payload, err := json.Marshal(row); err == nil {
		r.pusher.SendToUser(recipientID, payload)
	}
}

// NotifyMany fans one event out to several recipients.
func (r *Router) NotifyMany(ctx context.Context, recipients []model.User, sender auth.AuthenticatedActor, event Event) {
	for _, recipient := range recipients {
		r.Notify(ctx, recipient.ID, sender, event)
	}
}

// SendMail emails one recipient. Delivery failures are logged, never
// returned.
func (r *Router) SendMail(recipient model.User, event Event) {
	rendering := r.catalog.Render(event)
	err := r.mail.Send(mailer.Email{
		To:      recipient.Email,
		ToName:  recipient.FullName,
		Subject: rendering.Subject,
		Body:    rendering.Message,
	})
	if err != nil {
		log.Printf("notifier: mail %s to %s: %v", event.eventName(), recipient.Email, err)
	}
}

// SendMailToMany emails every recipient in turn.
func (r *Router) SendMailToMany(recipients []model.User, event Event) {
	for _, recipient := range recipients {
		r.SendMail(recipient, event)
	}
}

// NewRequest tells the manager a direct report submitted a request.
func (r *Router) NewRequest(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	manager, err := r.dir.FindByName(ctx, req.ManagerName)
	if err != nil {
		log.Printf("notifier: resolve manager %q: %v", req.ManagerName, err)
		return
	}
	event := NewRequestSubmitted{Request: req}
	r.Notify(ctx, manager.ID, sender, event)
	r.SendMail(*manager, event)
}

// RequesterDecision tells the requester the latest decision on their
// request, in-app and by email. The budget axis only moves after the
// manager axis is settled, so a non-open budget status identifies the
// budget decision as the one being announced.
func (r *Router) RequesterDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	var event Event = ManagerDecision{Request: req, Decision: req.Status}
	if req.BudgetStatus != "" && req.BudgetStatus != model.StatusOpen {
		event = BudgetDecision{Request: req, Decision: req.BudgetStatus}
	}
	r.Notify(ctx, req.RequesterID, sender, event)

	requester, err := r.dir.FindByID(ctx, req.RequesterID)
	if err != nil {
		log.Printf("notifier: resolve requester %s: %v", req.RequesterID, err)
		return
	}
	r.SendMail(*requester, event)
}

// TravelAdminsOnManagerApproval emails travel admins at the trip
// destinations once the manager stage passes.
func (r *Router) TravelAdminsOnManagerApproval(ctx context.Context, req *model.Request) {
	admins := r.destinationAdmins(ctx, req)
	if len(admins) == 0 {
		return
	}
	r.SendMailToMany(admins, TravelAdminManagerApproval{Request: req})
}

// BudgetCheckerRouting emails the budget checkers of the requester's
// department. A department with no members means no send.
func (r *Router) BudgetCheckerRouting(ctx context.Context, req *model.Request) {
	checkers, err := r.dir.FindByDepartment(ctx, req.Department)
	if err != nil {
		log.Printf("notifier: resolve department %q: %v", req.Department, err)
		return
	}
	if len(checkers) == 0 {
		return
	}
	r.SendMailToMany(checkers, BudgetCheckerRouting{Request: req})
}

// ManagerBudgetDecision notifies the request's manager of the budget
// decision. A manager that cannot be resolved is skipped, not an
// error.
func (r *Router) ManagerBudgetDecision(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor, decision string) {
	manager, err := r.dir.FindByName(ctx, req.ManagerName)
	if err != nil {
		log.Printf("notifier: resolve manager %q: %v", req.ManagerName, err)
		return
	}
	r.Notify(ctx, manager.ID, sender, BudgetDecision{Request: req, Decision: decision})
}

// FinanceOnBudgetApproved emails the finance team members at the
// requester's location after a successful budget check.
func (r *Router) FinanceOnBudgetApproved(ctx context.Context, req *model.Request, checkerName string) {
	members, err := r.dir.FindByRoleAndLocation(ctx, model.RoleFinance, req.Location)
	if err != nil {
		log.Printf("notifier: resolve finance team: %v", err)
		return
	}
	if len(members) == 0 {
		return
	}
	r.SendMailToMany(members, FinanceBudgetApproved{Request: req, BudgetCheckerName: checkerName})
}

// VerifiedFanOut runs the verification fan-out: every travel admin at
// the destination centers gets an in-app notification and an email,
// the manager gets an in-app notification, and finance gets an email.
func (r *Router) VerifiedFanOut(ctx context.Context, req *model.Request, sender auth.AuthenticatedActor) {
	event := RequestVerified{Request: req}

	admins := r.destinationAdmins(ctx, req)
	r.NotifyMany(ctx, admins, sender, event)
	r.SendMailToMany(admins, event)

	if manager, err := r.dir.FindByName(ctx, req.ManagerName); err == nil {
		r.Notify(ctx, manager.ID, sender, event)
	} else {
		log.Printf("notifier: resolve manager %q: %v", req.ManagerName, err)
	}

	if members, err := r.dir.FindByRoleAndLocation(ctx, model.RoleFinance, req.Location); err == nil {
		r.SendMailToMany(members, event)
	} else {
		log.Printf("notifier: resolve finance team: %v", err)
	}
}

func (r *Router) destinationAdmins(ctx context.Context, req *model.Request) []model.User {
	destinations := make([]string, 0, len(req.Trips))
	for _, trip := range req.Trips {
		destinations = append(destinations, trip.Destination)
	}
	admins, err := r.dir.FindByDestinations(ctx, model.RoleTravelAdministrator, destinations)
	if err != nil {
		log.Printf("notifier: resolve travel admins: %v", err)
		return nil
	}
	return admins
}
