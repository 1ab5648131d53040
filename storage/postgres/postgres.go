// Package postgres keeps the subscriber list in a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/monitoring-bot/internal/utils"
	"github.com/and161185/monitoring-bot/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `CREATE TABLE IF NOT EXISTS subscribers (
	position BIGSERIAL,
	chat_id  BIGINT PRIMARY KEY
)`

type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, databaseDsn string) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, databaseDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	err = utils.WithRetry(ctx, func() error {
		_, execErr := db.Exec(ctx, createTable)
		return execErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresStorage{db: db}, nil
}

// Load returns subscribers in the order they were saved. An empty table is an empty list.
func (store *PostgresStorage) Load(ctx context.Context) ([]model.ChatID, error) {
	var ids []model.ChatID
	err := utils.WithRetry(ctx, func() error {
		rows, queryErr := store.db.Query(ctx, `SELECT chat_id FROM subscribers ORDER BY position`)
		if queryErr != nil {
			return queryErr
		}
		var collectErr error
		ids, collectErr = pgx.CollectRows(rows, pgx.RowTo[model.ChatID])
		return collectErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
	return ids, nil
}

// Save replaces the table contents in one transaction.
func (store *PostgresStorage) Save(ctx context.Context, ids []model.ChatID) error {
	err := utils.WithRetry(ctx, func() error {
		return pgx.BeginFunc(ctx, store.db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `DELETE FROM subscribers`); err != nil {
				return err
			}

			batch := &pgx.Batch{}
			for _, id := range ids {
				batch.Queue(`INSERT INTO subscribers (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, int64(id))
			}
			return tx.SendBatch(ctx, batch).Close()
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save subscribers: %w", err)
	}
	return nil
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

func (store *PostgresStorage) Close() {
	store.db.Close()
}
