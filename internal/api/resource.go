package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"velocity/internal/auth"
	"velocity/internal/messaging"
	"velocity/internal/model"
	"velocity/internal/query"
)

// stamp fills a column when a record enters a status, unless the client
// supplied the value itself.
type stamp struct {
	column string
	value  func(r *http.Request) any
}

func today(*http.Request) any { return time.Now().Format(time.DateOnly) }

func now(*http.Request) any { return time.Now().UTC() }

func caller(r *http.Request) any {
	if id := auth.GetUserID(r); id > 0 {
		return id
	}
	return nil
}

// statusRule describes the status column of a resource.
type statusRule struct {
	stamps map[string][]stamp
	// permission per target status, "*" for any status.
	permissions map[string]string
}

func (s *statusRule) permission(status string) string {
	if p, ok := s.permissions[status]; ok {
		return p
	}
	return s.permissions["*"]
}

// resource serves the CRUD routes of one table.
type resource[T model.Record] struct {
	api    *API
	name   string
	store  Store[T]
	status *statusRule

	// prepare runs on the decoded create body before binding.
	prepare func(r *http.Request, body map[string]any) error
	// invalidates lists the cache prefixes that read this table.
	invalidates []string
	// deletePermission gates DELETE; empty means any authenticated user.
	deletePermission string
	// writePermission gates POST and PUT.
	writePermission string
}

func (res *resource[T]) label() string {
	return res.store.Table().Label
}

func (res *resource[T]) mount(r chi.Router) {
	write := func(h http.HandlerFunc) http.Handler {
		if res.writePermission == "" {
			return h
		}
		return auth.RequirePermission(res.writePermission)(h)
	}

	r.Get("/", res.list)
	r.Method(http.MethodPost, "/", write(res.create))
	r.Get("/{id}", res.get)
	r.Method(http.MethodPut, "/{id}", write(res.update))
	if res.status != nil {
		r.Patch("/{id}/status", res.patchStatus)
	}
	if res.deletePermission != "" {
		r.With(auth.RequirePermission(res.deletePermission)).Delete("/{id}", res.delete)
	} else {
		r.Delete("/{id}", res.delete)
	}
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	params, err := res.store.Table().ParseList(r.URL.Query())
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	items, total, err := res.store.List(r.Context(), params)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	w.Header().Set("Access-Control-Expose-Headers", "X-Total-Count")
	res.api.writeJSON(w, http.StatusOK, items)
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := res.store.Get(r.Context(), id)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	res.api.writeJSON(w, http.StatusOK, item)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	if res.prepare != nil {
		if err := res.prepare(r, body); err != nil {
			res.api.writeStoreError(w, r, res.label(), err)
			return
		}
	}
	vals, err := res.store.Table().Bind(body, query.Create)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	status, hasStatus := statusOf(vals)
	if hasStatus && res.status != nil {
		if !res.allowed(w, r, status) {
			return
		}
		for _, a := range res.stampValues(r, status, &vals) {
			vals.Set(a.Column, a.Value)
		}
	}

	item, err := res.store.Create(r.Context(), vals)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}

	ev := messaging.NewEvent(res.name, messaging.ActionCreated, item.RecordID(), item)
	ev.Status = item.StatusValue()
	ev.ActorID = auth.GetUserID(r)
	res.api.publish(r.Context(), ev)
	res.api.invalidate(r.Context(), res.invalidates...)

	res.api.Log.Info("Record created", zap.String("resource", res.name), zap.Int64("id", item.RecordID()))
	res.api.writeJSON(w, http.StatusCreated, item)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, err := decodeObject(r)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	vals, err := res.store.Table().Bind(body, query.Update)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	if len(vals) == 0 {
		res.api.writeStoreError(w, r, res.label(), query.ErrNoValues)
		return
	}
	res.save(w, r, id, vals, messaging.ActionUpdated)
}

// patchStatus accepts {"status": ..., <stamp fields>} and applies the
// status side effects.
func (res *resource[T]) patchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, err := decodeObject(r)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	for field := range body {
		if field != "status" && !res.isStampField(field) {
			writeError(w, http.StatusBadRequest, field+" cannot be set on a status change")
			return
		}
	}
	if _, ok := body["status"]; !ok {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	vals, err := res.store.Table().Bind(body, query.Update)
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}
	if _, ok := statusOf(vals); !ok {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	res.save(w, r, id, vals, messaging.ActionStatusChanged)
}

// save updates the row, stamping and publishing a status change when the
// status moved.
func (res *resource[T]) save(w http.ResponseWriter, r *http.Request, id int64, vals query.Values, action string) {
	ctx := r.Context()

	var (
		item     T
		previous string
		err      error
	)
	status, hasStatus := statusOf(vals)
	if hasStatus && res.status != nil {
		if !res.allowed(w, r, status) {
			return
		}
		stamps := res.stampValues(r, status, &vals)
		item, previous, err = res.store.UpdateStatus(ctx, id, vals, stamps)
	} else {
		item, err = res.store.Update(ctx, id, vals)
	}
	if err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}

	if hasStatus && res.status != nil && status != previous {
		action = messaging.ActionStatusChanged
	} else if action == messaging.ActionStatusChanged {
		action = messaging.ActionUpdated
	}
	ev := messaging.NewEvent(res.name, action, item.RecordID(), item)
	ev.Status = item.StatusValue()
	ev.PreviousStatus = previous
	ev.ActorID = auth.GetUserID(r)
	res.api.publish(ctx, ev)
	res.api.invalidate(ctx, res.invalidates...)

	res.api.Log.Info("Record updated",
		zap.String("resource", res.name),
		zap.Int64("id", id),
		zap.String("action", action),
	)
	res.api.writeJSON(w, http.StatusOK, item)
}

func (res *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := res.store.Delete(r.Context(), id); err != nil {
		res.api.writeStoreError(w, r, res.label(), err)
		return
	}

	ev := messaging.NewEvent(res.name, messaging.ActionDeleted, id, nil)
	ev.ActorID = auth.GetUserID(r)
	res.api.publish(r.Context(), ev)
	res.api.invalidate(r.Context(), res.invalidates...)

	res.api.Log.Info("Record deleted", zap.String("resource", res.name), zap.Int64("id", id))
	res.api.writeJSON(w, http.StatusOK, map[string]any{
		"message": res.label() + " deleted successfully",
		"id":      id,
	})
}

func (res *resource[T]) allowed(w http.ResponseWriter, r *http.Request, status string) bool {
	perm := res.status.permission(status)
	if perm == "" {
		return true
	}
	c, ok := auth.GetClaims(r)
	if !ok || !auth.HasPermission(c.Role, perm) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return false
	}
	return true
}

// stampValues returns the stamps for entering status. A stamp column the
// client set to null counts as not supplied and is moved out of vals.
func (res *resource[T]) stampValues(r *http.Request, status string, vals *query.Values) query.Values {
	var out query.Values
	for _, s := range res.status.stamps[status] {
		if v, set := vals.Get(s.column); set {
			if v != nil {
				continue
			}
			vals.Del(s.column)
		}
		if v := s.value(r); v != nil {
			out.Set(s.column, v)
		}
	}
	return out
}

func (res *resource[T]) isStampField(field string) bool {
	if res.status == nil {
		return false
	}
	col, ok := res.store.Table().ByField(field)
	if !ok {
		return false
	}
	for _, stamps := range res.status.stamps {
		for _, s := range stamps {
			if s.column == col.Name {
				return true
			}
		}
	}
	return false
}

func statusOf(vals query.Values) (string, bool) {
	v, ok := vals.Get("status")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := query.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
