package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"velocity/internal/cache"
	"velocity/internal/messaging"
	"velocity/internal/model"
	"velocity/internal/query"
	"velocity/internal/readiness"
	"velocity/internal/storage"
)

// Store is the persistence a REST resource needs. *storage.Repo satisfies it.
type Store[T model.Record] interface {
	Table() *query.Table
	List(ctx context.Context, p query.ListParams) ([]T, int, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, vals query.Values) (T, error)
	Update(ctx context.Context, id int64, vals query.Values) (T, error)
	// UpdateStatus also returns the status the row had before the update.
	UpdateStatus(ctx context.Context, id int64, vals, stamps query.Values) (T, string, error)
	Delete(ctx context.Context, id int64) error
}

// Reports serves the aggregate dashboard queries.
type Reports interface {
	TrancheSummary(ctx context.Context, sowID *int64) (model.TrancheSummary, error)
	DashboardKPIs(ctx context.Context) (model.DashboardKPIs, error)
}

type Users interface {
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UserByID(ctx context.Context, id int64) (model.User, error)
}

// WorkerScaler resizes event consumers at runtime.
type WorkerScaler interface {
	SetWorkerCount(queue string, n int) error
	WorkerCounts() map[string]int
}

type API struct {
	Messages       Store[model.Message]
	Templates      Store[model.MessageTemplate]
	Tranches       Store[model.SOWTranche]
	Contractors    Store[model.Contractor]
	PurchaseOrders Store[model.PurchaseOrder]
	Invoices       Store[model.Invoice]
	Timecards      Store[model.Timecard]
	Alerts         Store[model.Alert]
	Departments    Store[model.Department]

	Reports   Reports
	Users     Users
	DB        readiness.Pinger
	Readiness *readiness.Runner
	Workers   WorkerScaler

	Publisher messaging.Publisher
	Cache     cache.Cache
	CacheTTL  time.Duration

	Log *zap.Logger
}

// NewAPI wires the handlers to the Postgres repositories. Publisher, cache,
// readiness runner and worker scaler are optional and set by the caller.
func NewAPI(st *storage.Storage, log *zap.Logger) *API {
	return &API{
		Messages:       st.Messages,
		Templates:      st.Templates,
		Tranches:       st.Tranches,
		Contractors:    st.Contractors,
		PurchaseOrders: st.PurchaseOrders,
		Invoices:       st.Invoices,
		Timecards:      st.Timecards,
		Alerts:         st.Alerts,
		Departments:    st.Departments,
		Reports:        st,
		Users:          st,
		DB:             st.DB,
		Log:            log,
	}
}

func (a *API) defaults() {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	if a.Publisher == nil {
		a.Publisher = messaging.NoopPublisher{Log: a.Log}
	}
	if a.Cache == nil {
		a.Cache = cache.Noop{}
	}
	if a.CacheTTL <= 0 {
		a.CacheTTL = 30 * time.Second
	}
}

// publish sends ev without failing the request.
func (a *API) publish(ctx context.Context, ev messaging.Event) {
	if err := a.Publisher.Publish(ctx, ev); err != nil {
		a.Log.Warn("Failed to publish event", zap.String("type", ev.Type), zap.Int64("entity_id", ev.EntityID), zap.Error(err))
	}
}

func (a *API) invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		if err := a.Cache.Invalidate(ctx, p); err != nil {
			a.Log.Warn("Failed to invalidate cache", zap.String("prefix", p), zap.Error(err))
		}
	}
}
