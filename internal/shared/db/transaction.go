// Package db holds the transaction plumbing shared by the gorm repositories.
// A unit of work opens one transaction and carries it in the context, so
// repository calls made inside the callback all write through the same
// transaction without threading *gorm.DB through every signature.
package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TransactionManager runs multi-step writes in a single transaction.
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a TransactionManager on the given handle.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// RunInTransaction opens a transaction, places it in the context and invokes
// fn. The transaction commits when fn returns nil and rolls back otherwise.
func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetTx resolves the handle for the current unit of work.
func (tm *TransactionManager) GetTx(ctx context.Context) *gorm.DB {
	return GetTxFromContext(ctx, tm.db)
}

// GetTxFromContext returns the in-flight transaction when the context
// carries one, and defaultDB otherwise. Repositories call this so they work
// the same inside and outside a unit of work.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}
