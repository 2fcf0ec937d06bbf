package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventinvitations/internal/delivery/http/controllers"
)

// Controllers bundles the handlers the router wires up.
type Controllers struct {
	Auth       *controllers.AuthController
	Template   *controllers.TemplateController
	Event      *controllers.EventController
	Invitation *controllers.InvitationController
	Public     *controllers.PublicController
}

// NewRouter initializes the HTTP router with all application routes.
// Organizer routes go through the auth wrapper; the public invitation
// surface and auth endpoints do not.
func NewRouter(c Controllers, auth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Templates
	mux.HandleFunc("POST /templates", auth(c.Template.Create))
	mux.HandleFunc("GET /templates", auth(c.Template.List))
	mux.HandleFunc("GET /templates/{id}", auth(c.Template.Get))
	mux.HandleFunc("PUT /templates/{id}", auth(c.Template.Update))
	mux.HandleFunc("DELETE /templates/{id}", auth(c.Template.Delete))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.Create))
	mux.HandleFunc("GET /events", auth(c.Event.List))
	mux.HandleFunc("GET /events/{id}", auth(c.Event.Get))
	mux.HandleFunc("PATCH /events/{id}", auth(c.Event.Update))
	mux.HandleFunc("DELETE /events/{id}", auth(c.Event.Delete))
	mux.HandleFunc("POST /events/{id}/publish", auth(c.Event.Publish))
	mux.HandleFunc("POST /events/{id}/draft", auth(c.Event.SaveAsDraft))
	mux.HandleFunc("POST /events/{id}/progress", auth(c.Event.SaveProgress))
	mux.HandleFunc("GET /events/{id}/preview", auth(c.Event.Preview))

	// Invitations
	mux.HandleFunc("POST /events/{id}/invitations", auth(c.Invitation.Create))
	mux.HandleFunc("GET /events/{id}/invitations", auth(c.Invitation.List))
	mux.HandleFunc("POST /events/{id}/invitations/bulk", auth(c.Invitation.Bulk))
	mux.HandleFunc("POST /invitations/{id}/send", auth(c.Invitation.Send))
	mux.HandleFunc("POST /invitations/{id}/resend", auth(c.Invitation.Resend))
	mux.HandleFunc("POST /invitations/{id}/reminder", auth(c.Invitation.Reminder))

	// Confirmations
	mux.HandleFunc("GET /events/{id}/confirmations", auth(c.Event.ListConfirmations))
	mux.HandleFunc("GET /events/{id}/confirmations/export", auth(c.Event.ExportConfirmations))

	// Public invitee surface, token is the only credential
	mux.HandleFunc("GET /public/invitations/{token}", c.Public.Get)
	mux.HandleFunc("POST /public/invitations/{token}/confirm", c.Public.Confirm)
	mux.HandleFunc("POST /public/invitations/{token}/decline", c.Public.Decline)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
