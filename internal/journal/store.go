package journal

import (
	"context"

	"btc_surveillance/internal/models"
)

// Store — персистентный стейт движка: максимум одна открытая позиция
// и append-only журнал сигналов.
//
// CommitCycle пишет результат цикла целиком: обновление/вставку позиции и
// записи журнала в одной транзакции. Частично применённых циклов не бывает.
type Store interface {
	LoadOpenPosition(ctx context.Context) (*models.Position, error)
	CommitCycle(ctx context.Context, pos *models.Position, records []models.SignalRecord) error
}
