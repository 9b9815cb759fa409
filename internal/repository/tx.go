package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/logger"
)

// TxManager runs a function inside one database transaction. Services use
// it to tie a status transition, its wallet mutation and its outbox event
// together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Error("rollback error", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}
