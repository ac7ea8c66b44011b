package notify

import (
	"fmt"
	"strings"

	"btc_surveillance/internal/models"
)

// Форматы сообщений. Выход только по трейлинг-стопу, фиксированного TP нет.

func OpenMessage(rec models.SignalRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🟢 Сигнал LONG %s (4H)\n", rec.Symbol)
	b.WriteString("────────────────────\n")
	fmt.Fprintf(&b, "📅 Дата: %s\n", rec.Date.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "💰 Цена входа: %.2f USDT\n", rec.EntryPrice)
	fmt.Fprintf(&b, "🛑 Начальный SL: %.2f USDT\n", rec.InitialStop)
	fmt.Fprintf(&b, "📐 Размер позиции: %.8f BTC\n", rec.Size)
	fmt.Fprintf(&b, "⚠️ Риск: %.2f USDT\n", rec.RiskAmount)
	fmt.Fprintf(&b, "❌ Теоретический убыток по SL: %.2f USDT\n", rec.TheoreticalLoss)
	b.WriteString("────────────────────\n")
	b.WriteString("Выход: трейлинг-стоп close − 3×ATR, без TP. Статус: OPEN")
	return b.String()
}

func TrailMessage(symbol string, oldStop, newStop, price float64) string {
	return fmt.Sprintf(
		"📈 Трейлинг-стоп %s подтянут\nСтарый SL: %.2f\nНовый SL: %.2f\nЦена: %.2f",
		symbol, oldStop, newStop, price,
	)
}

func CloseMessage(rec models.SignalRecord) string {
	return fmt.Sprintf(
		"🚨 ВЫХОД ИЗ СДЕЛКИ %s\nЛой свечи (%.2f) коснулся трейлинг-стопа (%.2f).\n\n👉 Закрой позицию на бирже вручную!",
		rec.Symbol, rec.ExitLow, rec.CurrentStop,
	)
}
