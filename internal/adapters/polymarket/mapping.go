package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// mapRawFill convierte un fill del Data API a domain.RawFill.
// ok=false significa fila malformada: se salta, no es un error.
func mapRawFill(rf rawDataFill, wallet string) (domain.RawFill, bool) {
	if rf.ID == "" {
		return domain.RawFill{}, false
	}

	price, err := rf.Price.Float64()
	if err != nil {
		return domain.RawFill{}, false
	}
	size, err := rf.Size.Float64()
	if err != nil {
		return domain.RawFill{}, false
	}

	side, ok := mapSide(rf.Side)
	if !ok {
		return domain.RawFill{}, false
	}

	ts := parseFillTimestamp(rf.Timestamp)
	if ts.IsZero() {
		return domain.RawFill{}, false
	}

	if rf.Wallet != "" {
		wallet = rf.Wallet
	}

	return domain.RawFill{
		Hash:      rf.ID,
		Wallet:    wallet,
		MarketID:  rf.ConditionID,
		OutcomeID: rf.Asset,
		Side:      side,
		Size:      size,
		Price:     price,
		Timestamp: ts,
	}, true
}

func mapSide(s string) (domain.Side, bool) {
	switch strings.ToUpper(s) {
	case "BUY":
		return domain.SideBuy, true
	case "SELL":
		return domain.SideSell, true
	default:
		return "", false
	}
}

// parseFillTimestamp tolera los formatos que usa Polymarket: unix en
// segundos o milisegundos, float, o ISO 8601.
func parseFillTimestamp(n json.Number) time.Time {
	s := n.String()
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return time.Unix(sec/1000, (sec%1000)*int64(time.Millisecond))
		}
		return time.Unix(sec, 0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec)
	}
	for _, layout := range []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
