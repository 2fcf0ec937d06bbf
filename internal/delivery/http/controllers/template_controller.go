package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/domain"
)

// TemplateRequest is the request body for creating or updating a template.
type TemplateRequest struct {
	Name        string                 `json:"name"`
	Design      *domain.DesignDocument `json:"design"`
	IsPublic    bool                   `json:"is_public"`
	IsTemporary bool                   `json:"is_temporary"`
}

// Validate implements Validator.
func (t TemplateRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// TemplateController handles the template catalog.
type TemplateController struct {
	Logger  *slog.Logger
	Service domain.TemplateService
	Users   domain.UserService
}

func NewTemplateController(logger *slog.Logger, svc domain.TemplateService, users domain.UserService) *TemplateController {
	return &TemplateController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// caller resolves the authenticated user from the request context. Writes
// a 401 or 500 and returns false when it cannot.
func (c *TemplateController) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return nil, false
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return nil, false
	}
	return user, true
}

// Create godoc
// @Summary Create a template
// @Description Creates a template. Non-admin callers always get a private temporary template that expires after 48 hours.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TemplateRequest true "Template data"
// @Success 201 {object} helpers.APIResponse "data contains the created template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /templates [post]
func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req TemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tmpl := &domain.Template{
		Name:        req.Name,
		Design:      req.Design,
		IsPublic:    req.IsPublic,
		IsTemporary: req.IsTemporary,
	}
	if err := c.Service.Create(r.Context(), user, tmpl); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tmpl)
}

// List godoc
// @Summary List templates
// @Description Lists templates visible to the caller: public ones plus the caller's own temporary ones. Admins see everything.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the template list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /templates [get]
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	templates, err := c.Service.List(r.Context(), user)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, templates)
}

// Get godoc
// @Summary Get a template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} helpers.APIResponse "data contains the template"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /templates/{id} [get]
func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tmpl, err := c.Service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tmpl)
}

// Update godoc
// @Summary Update a template
// @Description Updates a template's name and design. Visibility flags are not client-mutable.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body TemplateRequest true "Template data"
// @Success 200 {object} helpers.APIResponse "data contains the updated template"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /templates/{id} [put]
func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req TemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tmpl := &domain.Template{
		ID:     r.PathValue("id"),
		Name:   req.Name,
		Design: req.Design,
	}
	if err := c.Service.Update(r.Context(), user, tmpl); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tmpl)
}

// Delete godoc
// @Summary Delete a template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /templates/{id} [delete]
func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := c.caller(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
