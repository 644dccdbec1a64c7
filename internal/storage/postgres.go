// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"velocity/internal/model"
)

//go:embed schema.sql
var schema string

type Storage struct {
	DB *sql.DB

	Messages       *Repo[model.Message]
	Templates      *Repo[model.MessageTemplate]
	Tranches       *Repo[model.SOWTranche]
	Contractors    *Repo[model.Contractor]
	PurchaseOrders *Repo[model.PurchaseOrder]
	Invoices       *Repo[model.Invoice]
	Timecards      *Repo[model.Timecard]
	Alerts         *Repo[model.Alert]
	Departments    *Repo[model.Department]

	log *zap.Logger
}

// PoolOptions tunes the database/sql connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewStorage(dsn string, pool PoolOptions, log *zap.Logger) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return New(db, log), nil
}

// New wires the resource repositories around an open database handle.
func New(db *sql.DB, log *zap.Logger) *Storage {
	return &Storage{
		DB:             db,
		Messages:       NewRepo(db, MessageTable, scanMessage, log),
		Templates:      NewRepo(db, TemplateTable, scanTemplate, log),
		Tranches:       NewRepo(db, TrancheTable, scanTranche, log),
		Contractors:    NewRepo(db, ContractorTable, scanContractor, log),
		PurchaseOrders: NewRepo(db, PurchaseOrderTable, scanPurchaseOrder, log),
		Invoices:       NewRepo(db, InvoiceTable, scanInvoice, log),
		Timecards:      NewRepo(db, TimecardTable, scanTimecard, log),
		Alerts:         NewRepo(db, AlertTable, scanAlert, log),
		Departments:    NewRepo(db, DepartmentTable, scanDepartment, log),
		log:            log,
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.log.Info("Schema applied")
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
