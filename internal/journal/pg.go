package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"btc_surveillance/internal/models"
	"btc_surveillance/pkg/db"
)

// PgStore реализует Store поверх Postgres. Единственность открытой позиции
// подстрахована частичным уникальным индексом positions_one_open.
type PgStore struct {
	tm *db.PgTxManager
}

func NewPgStore(tm *db.PgTxManager) *PgStore {
	return &PgStore{tm: tm}
}

func (s *PgStore) LoadOpenPosition(ctx context.Context) (pos *models.Position, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.LoadOpenPosition: %w", err)
		}
	}()

	row := s.tm.Conn().QueryRow(ctx, `
		SELECT id, entry_price, initial_stop, current_stop, size, risk_amount, opened_at, status
		FROM positions
		WHERE status = 'OPEN'
		ORDER BY opened_at DESC
		LIMIT 1`)

	p := models.Position{}
	err = row.Scan(&p.ID, &p.EntryPrice, &p.InitialStop, &p.CurrentStop, &p.Size, &p.RiskAmount, &p.OpenedAt, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) CommitCycle(ctx context.Context, pos *models.Position, records []models.SignalRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.CommitCycle: %w", err)
		}
	}()

	return s.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		if pos != nil {
			if err := upsertPosition(ctxTx, tx, pos); err != nil {
				return err
			}
		}
		for _, rec := range records {
			payload, err := sonic.Marshal(rec)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctxTx,
				`INSERT INTO journal (created_at, status, payload) VALUES ($1, $2, $3)`,
				time.Now().UTC(), string(rec.Status), payload)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertPosition(ctx context.Context, tx pgx.Tx, pos *models.Position) error {
	if pos.ID == 0 {
		row := tx.QueryRow(ctx, `
			INSERT INTO positions (entry_price, initial_stop, current_stop, size, risk_amount, opened_at, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			pos.EntryPrice, pos.InitialStop, pos.CurrentStop, pos.Size, pos.RiskAmount, pos.OpenedAt, pos.Status)
		return row.Scan(&pos.ID)
	}

	var closedAt *time.Time
	if !pos.ClosedAt.IsZero() {
		closedAt = &pos.ClosedAt
	}
	_, err := tx.Exec(ctx, `
		UPDATE positions
		SET current_stop = $2, status = $3, closed_at = $4
		WHERE id = $1`,
		pos.ID, pos.CurrentStop, pos.Status, closedAt)
	return err
}
