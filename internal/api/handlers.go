package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"velocity/internal/auth"
	"velocity/internal/cache"
	"velocity/internal/messaging"
	"velocity/internal/model"
	"velocity/internal/query"
	"velocity/internal/storage"
	"velocity/internal/templating"
)

// prepareMessage fills a message create body from its template. The
// non-column "variables" object is consumed here; senderId defaults to the
// caller.
func (a *API) prepareMessage(r *http.Request, body map[string]any) error {
	vars := map[string]any{}
	if raw, ok := body["variables"]; ok {
		delete(body, "variables")
		if raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return &query.FieldError{Field: "variables", Message: "must be an object"}
			}
			vars = m
		}
	}

	if _, ok := body["senderId"]; !ok {
		if id := auth.GetUserID(r); id > 0 {
			body["senderId"] = id
		}
	}

	if raw, ok := body["templateId"]; ok && raw != nil {
		col, _ := a.Messages.Table().ByField("templateId")
		v, err := col.Coerce(raw)
		if err != nil {
			return err
		}
		tpl, err := a.Templates.Get(r.Context(), v.(int64))
		if errors.Is(err, storage.ErrNotFound) {
			return &query.FieldError{Message: "Template not found"}
		}
		if err != nil {
			return err
		}
		if s, _ := body["subject"].(string); s == "" {
			body["subject"] = tpl.Subject
		}
		if s, _ := body["body"].(string); s == "" {
			body["body"] = tpl.Body
		}
		if _, ok := body["category"]; !ok && tpl.Category != "" {
			body["category"] = tpl.Category
		}
	}

	for _, field := range []string{"subject", "body"} {
		if s, ok := body[field].(string); ok {
			body[field] = templating.Render(s, vars)
		}
	}
	return nil
}

type RenderRequest struct {
	Variables map[string]any `json:"variables"`
}

type RenderResponse struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Missing []string `json:"missing"`
}

// @Summary Preview a message template
// @Tags Templates
// @Security ApiKeyAuth
// @Param id path int true "Template id"
// @Param body body RenderRequest true "Variables"
// @Success 200 {object} RenderResponse
// @Failure 404 {object} map[string]string
// @Router /api/message-templates/{id}/render [post]
func (a *API) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RenderRequest
	if err := decodeInto(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	tpl, err := a.Templates.Get(r.Context(), id)
	if err != nil {
		a.writeStoreError(w, r, "Template", err)
		return
	}

	missing := []string{}
	for _, key := range templating.Placeholders(tpl.Subject + "\n" + tpl.Body) {
		if _, ok := req.Variables[key]; !ok {
			missing = append(missing, key)
		}
	}
	a.writeJSON(w, http.StatusOK, RenderResponse{
		Subject: templating.Render(tpl.Subject, req.Variables),
		Body:    templating.Render(tpl.Body, req.Variables),
		Missing: missing,
	})
}

// @Summary Mark an alert as read
// @Tags Alerts
// @Security ApiKeyAuth
// @Param id path int true "Alert id"
// @Success 200 {object} model.Alert
// @Failure 404 {object} map[string]string
// @Router /api/alerts/{id}/read [patch]
func (a *API) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	alert, err := a.Alerts.Update(r.Context(), id, query.Values{{Column: "is_read", Value: true}})
	if err != nil {
		a.writeStoreError(w, r, "Alert", err)
		return
	}

	ev := messaging.NewEvent(model.ResourceAlert, messaging.ActionUpdated, id, alert)
	ev.ActorID = auth.GetUserID(r)
	a.publish(r.Context(), ev)
	a.invalidate(r.Context(), cache.KeyDashboard)

	a.writeJSON(w, http.StatusOK, alert)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// @Summary Log in and receive a bearer token
// @Tags Auth
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeInto(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.Users.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !auth.CheckPassword(req.Password, user.PasswordHash)) {
		a.Log.Info("Login rejected", zap.String("email", req.Email))
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		a.writeInternal(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		a.writeInternal(w, r, err)
		return
	}
	a.Log.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	a.writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// @Summary Current user
// @Tags Auth
// @Security ApiKeyAuth
// @Success 200 {object} model.User
// @Router /api/auth/me [get]
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.UserByID(r.Context(), auth.GetUserID(r))
	if err != nil {
		a.writeStoreError(w, r, "User", err)
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

// @Summary Run the platform readiness checks
// @Tags Platform
// @Security ApiKeyAuth
// @Success 200 {object} readiness.Report
// @Router /api/platform/validate [get]
func (a *API) PlatformValidate(w http.ResponseWriter, r *http.Request) {
	if a.Readiness == nil {
		writeError(w, http.StatusServiceUnavailable, "Readiness checks not configured")
		return
	}
	a.writeJSON(w, http.StatusOK, a.Readiness.Run(r.Context()))
}

type WorkerConfig struct {
	Queue   string `json:"queue"`
	Workers int    `json:"workers"`
}

// @Summary Worker counts per event queue
// @Tags Platform
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int
// @Router /api/platform/workers [get]
func (a *API) ListWorkers(w http.ResponseWriter, r *http.Request) {
	if a.Workers == nil {
		a.writeJSON(w, http.StatusOK, map[string]int{})
		return
	}
	a.writeJSON(w, http.StatusOK, a.Workers.WorkerCounts())
}

// @Summary Update worker pool concurrency
// @Tags Platform
// @Security ApiKeyAuth
// @Param body body WorkerConfig true "Concurrency config"
// @Success 200 {object} map[string]int
// @Router /api/platform/workers [put]
func (a *API) UpdateWorkers(w http.ResponseWriter, r *http.Request) {
	if a.Workers == nil {
		writeError(w, http.StatusServiceUnavailable, "Event processing not enabled")
		return
	}
	var body WorkerConfig
	if err := decodeInto(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Queue == "" || body.Workers < 1 || body.Workers > 64 {
		writeError(w, http.StatusBadRequest, "queue is required and workers must be between 1 and 64")
		return
	}
	if err := a.Workers.SetWorkerCount(body.Queue, body.Workers); err != nil {
		writeError(w, http.StatusNotFound, "Queue not found")
		return
	}
	a.Log.Info("Worker count updated", zap.String("queue", body.Queue), zap.Int("workers", body.Workers))
	a.writeJSON(w, http.StatusOK, a.Workers.WorkerCounts())
}
