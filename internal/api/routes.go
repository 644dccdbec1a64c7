package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"velocity/internal/auth"
	"velocity/internal/cache"
	"velocity/internal/metrics"
	"velocity/internal/model"
	"velocity/internal/voice"
)

func (a *API) Router() http.Handler {
	a.defaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Readyz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.Login)

		// Secured
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTAuthMiddleware)

			r.Get("/auth/me", a.Me)

			messages := &resource[model.Message]{
				api:   a,
				name:  model.ResourceMessage,
				store: a.Messages,
				status: &statusRule{stamps: map[string][]stamp{
					"sent": {{column: "sent_at", value: now}},
					"read": {{column: "read_at", value: now}},
				}},
				prepare:          a.prepareMessage,
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/messages", messages.mount)

			templates := &resource[model.MessageTemplate]{
				api:              a,
				name:             model.ResourceTemplate,
				store:            a.Templates,
				writePermission:  auth.PermissionManageTemplates,
				deletePermission: auth.PermissionManageTemplates,
			}
			r.Route("/message-templates", func(r chi.Router) {
				r.Post("/{id}/render", a.RenderTemplate)
				templates.mount(r)
			})

			tranches := &resource[model.SOWTranche]{
				api:   a,
				name:  model.ResourceTranche,
				store: a.Tranches,
				status: &statusRule{
					stamps:      map[string][]stamp{"paid": {{column: "paid_date", value: today}}},
					permissions: map[string]string{"*": auth.PermissionFinanceStatus},
				},
				invalidates:      []string{cache.KeyTrancheSummary, cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/sow-tranches", func(r chi.Router) {
				r.Get("/summary", a.TrancheSummary)
				tranches.mount(r)
			})

			contractors := &resource[model.Contractor]{
				api:   a,
				name:  model.ResourceContractor,
				store: a.Contractors,
				status: &statusRule{stamps: map[string][]stamp{
					"offboarded": {{column: "end_date", value: today}},
				}},
				invalidates:      []string{cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/contractors", contractors.mount)

			purchaseOrders := &resource[model.PurchaseOrder]{
				api:   a,
				name:  model.ResourcePurchaseOrder,
				store: a.PurchaseOrders,
				status: &statusRule{
					stamps:      map[string][]stamp{"closed": {{column: "closed_at", value: now}}},
					permissions: map[string]string{"*": auth.PermissionFinanceStatus},
				},
				invalidates:      []string{cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/purchase-orders", purchaseOrders.mount)

			invoices := &resource[model.Invoice]{
				api:   a,
				name:  model.ResourceInvoice,
				store: a.Invoices,
				status: &statusRule{
					stamps: map[string][]stamp{
						"paid":     {{column: "paid_date", value: today}},
						"approved": {{column: "approved_at", value: now}},
					},
					permissions: map[string]string{"*": auth.PermissionFinanceStatus},
				},
				invalidates:      []string{cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/invoices", invoices.mount)

			timecards := &resource[model.Timecard]{
				api:   a,
				name:  model.ResourceTimecard,
				store: a.Timecards,
				status: &statusRule{
					stamps: map[string][]stamp{
						"submitted": {{column: "submitted_at", value: now}},
						"approved":  {{column: "approved_at", value: now}, {column: "approved_by", value: caller}},
					},
					permissions: map[string]string{
						"approved": auth.PermissionApproveTimecards,
						"rejected": auth.PermissionApproveTimecards,
					},
				},
				invalidates:      []string{cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/timecards", timecards.mount)

			alerts := &resource[model.Alert]{
				api:              a,
				name:             model.ResourceAlert,
				store:            a.Alerts,
				invalidates:      []string{cache.KeyDashboard},
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/alerts", func(r chi.Router) {
				r.Patch("/{id}/read", a.MarkAlertRead)
				alerts.mount(r)
			})

			departments := &resource[model.Department]{
				api:              a,
				name:             model.ResourceDepartment,
				store:            a.Departments,
				deletePermission: auth.PermissionDelete,
			}
			r.Route("/departments", departments.mount)

			r.Get("/dashboard/kpis", a.DashboardKPIs)

			r.Get("/voice/screens", a.VoiceScreens)
			r.Post("/voice/resolve", a.VoiceResolve)

			r.Route("/platform", func(r chi.Router) {
				r.Use(auth.RequirePermission(auth.PermissionPlatform))
				r.Get("/validate", a.PlatformValidate)
				r.Get("/workers", a.ListWorkers)
				r.Put("/workers", a.UpdateWorkers)
			})
		})
	})

	return r
}

// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /readyz [get]
func (a *API) Readyz(w http.ResponseWriter, r *http.Request) {
	if a.DB == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	if err := a.DB.PingContext(r.Context()); err != nil {
		a.Log.Warn("Readiness ping failed")
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// @Summary List voice navigation screens
// @Tags Voice
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} voice.Screen
// @Router /api/voice/screens [get]
func (a *API) VoiceScreens(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, voice.Screens())
}

type VoiceCommand struct {
	Command string `json:"command"`
}

// @Summary Resolve a spoken navigation command
// @Tags Voice
// @Security ApiKeyAuth
// @Param body body VoiceCommand true "Command"
// @Success 200 {object} voice.Screen
// @Failure 404 {object} map[string]string
// @Router /api/voice/resolve [post]
func (a *API) VoiceResolve(w http.ResponseWriter, r *http.Request) {
	var body VoiceCommand
	if err := decodeInto(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	screen, ok := voice.Resolve(body.Command)
	if !ok {
		writeError(w, http.StatusNotFound, "No matching screen")
		return
	}
	a.writeJSON(w, http.StatusOK, screen)
}
