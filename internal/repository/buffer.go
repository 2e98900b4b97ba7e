package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fantasy-market/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// PendingTransaction is a transaction whose write never reached the
// backend, held locally until a sync replays it. CapturedAt is the
// local capture time and, together with the player id, the surrogate
// key used to remove the entry once its replay succeeds.
type PendingTransaction struct {
	BufferID    string
	Transaction domain.Transaction
	CapturedAt  time.Time
}

// BufferRepository persists the offline transaction buffer in sqlite.
type BufferRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBufferRepository(db *sql.DB, logger zerolog.Logger) *BufferRepository {
	return &BufferRepository{db: db, logger: logger}
}

const insertPending = `
INSERT INTO pending_transactions (
    id, type, league_id, player_id, player_name, player_team,
    player_position, price, tx_timestamp, user_id, seller_user_id,
    buyer_user_id, offer_id, captured_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *BufferRepository) Append(ctx context.Context, tx domain.Transaction, capturedAt time.Time) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate buffer id: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertPending,
		id,
		string(tx.Type),
		tx.LeagueID,
		tx.PlayerID,
		tx.PlayerName,
		tx.PlayerTeam,
		tx.PlayerPosition,
		tx.Price,
		tx.Timestamp,
		tx.UserID,
		tx.SellerUserID,
		tx.BuyerUserID,
		tx.OfferID,
		capturedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", tx.PlayerID).Msg("failed to buffer transaction")
		return fmt.Errorf("failed to buffer transaction: %w", err)
	}

	r.logger.Info().
		Str("type", string(tx.Type)).
		Str("player_id", tx.PlayerID).
		Time("captured_at", capturedAt).
		Msg("transaction buffered for later retry")
	return nil
}

const selectPending = `
SELECT id, type, league_id, player_id, player_name, player_team,
       player_position, price, tx_timestamp, user_id, seller_user_id,
       buyer_user_id, offer_id, captured_at
FROM pending_transactions
ORDER BY captured_at ASC`

func (r *BufferRepository) List(ctx context.Context) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx, selectPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		var txTimestamp sql.NullTime
		err := rows.Scan(
			&p.BufferID,
			&p.Transaction.Type,
			&p.Transaction.LeagueID,
			&p.Transaction.PlayerID,
			&p.Transaction.PlayerName,
			&p.Transaction.PlayerTeam,
			&p.Transaction.PlayerPosition,
			&p.Transaction.Price,
			&txTimestamp,
			&p.Transaction.UserID,
			&p.Transaction.SellerUserID,
			&p.Transaction.BuyerUserID,
			&p.Transaction.OfferID,
			&p.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending transaction: %w", err)
		}
		if txTimestamp.Valid {
			p.Transaction.Timestamp = txTimestamp.Time
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

const deletePending = `
DELETE FROM pending_transactions
WHERE player_id = ? AND captured_at = ?`

// Remove drops a replayed entry, matched by player id and capture
// timestamp.
func (r *BufferRepository) Remove(ctx context.Context, playerID string, capturedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, deletePending, playerID, capturedAt)
	if err != nil {
		return fmt.Errorf("failed to remove pending transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		r.logger.Debug().
			Str("player_id", playerID).
			Time("captured_at", capturedAt).
			Msg("no pending transaction matched for removal")
	}
	return nil
}

func (r *BufferRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count, nil
}
