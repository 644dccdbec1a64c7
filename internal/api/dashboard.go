package api

import (
	"context"
	"net/http"
	"strconv"

	"velocity/internal/cache"
	"velocity/internal/model"
)

// @Summary Tranche counts and amounts per status
// @Tags Tranches
// @Security ApiKeyAuth
// @Param sowId query int false "Restrict to one SOW"
// @Success 200 {object} model.TrancheSummary
// @Router /api/sow-tranches/summary [get]
func (a *API) TrancheSummary(w http.ResponseWriter, r *http.Request) {
	var sowID *int64
	key := cache.KeyTrancheSummary + "all"
	if s := r.URL.Query().Get("sowId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sowId must be an integer")
			return
		}
		sowID = &id
		key = cache.KeyTrancheSummary + s
	}

	sum, err := cache.Remember(r.Context(), a.Cache, a.Log, key, a.CacheTTL, func(ctx context.Context) (model.TrancheSummary, error) {
		return a.Reports.TrancheSummary(ctx, sowID)
	})
	if err != nil {
		a.writeInternal(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, sum)
}

// @Summary Dashboard KPIs
// @Tags Dashboard
// @Security ApiKeyAuth
// @Success 200 {object} model.DashboardKPIs
// @Router /api/dashboard/kpis [get]
func (a *API) DashboardKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := cache.Remember(r.Context(), a.Cache, a.Log, cache.KeyDashboard+"kpis", a.CacheTTL, a.Reports.DashboardKPIs)
	if err != nil {
		a.writeInternal(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, kpis)
}
