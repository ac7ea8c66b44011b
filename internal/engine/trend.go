package engine

import (
	"fmt"

	"btc_surveillance/internal/models"
)

// IsBullishDaily — дневной фильтр: торгуем только когда SuperTrend (10,3)
// на последней закрытой дневной свече смотрит вверх. DirNone означает,
// что дневной истории не хватило — это валидное "не бычий", а не ошибка.
func IsBullishDaily(dir models.TrendDirection) (bool, error) {
	switch dir {
	case models.DirUp:
		return true, nil
	case models.DirDown, models.DirNone:
		return false, nil
	default:
		return false, fmt.Errorf("%w: supertrend direction %d", ErrInvalidIndicatorData, dir)
	}
}
