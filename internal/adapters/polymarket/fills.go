package polymarket

// fills.go — leader wallet fill history via the public Data API.
//
// Implements ports.FillProvider. Only confirmed fills strictly newer
// than the caller's lower bound come back; malformed rows are skipped
// with a debug log instead of failing the batch.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

const (
	fillsPerPage  = 500
	fillsMaxPages = 4
)

type rawDataFill struct {
	ID          string      `json:"id"`
	Wallet      string      `json:"proxyWallet"`
	ConditionID string      `json:"conditionId"`
	Asset       string      `json:"asset"`
	Side        string      `json:"side"`
	Price       json.Number `json:"price"`
	Size        json.Number `json:"size"`
	Timestamp   json.Number `json:"timestamp"`
	Status      string      `json:"status"`
}

// FetchWalletFills obtiene los fills recientes de un wallet líder,
// estrictamente posteriores a since.
func (c *Client) FetchWalletFills(ctx context.Context, address string, since time.Time) ([]domain.RawFill, error) {
	var all []domain.RawFill

	for page := 0; page < fillsMaxPages; page++ {
		offset := page * fillsPerPage
		url := fmt.Sprintf("%s/trades?user=%s&limit=%d&offset=%d",
			c.dataBase, address, fillsPerPage, offset)

		var resp []rawDataFill
		if err := c.get(ctx, c.dataLimiter, url, &resp); err != nil {
			return nil, fmt.Errorf("data-api.FetchWalletFills: %w", err)
		}

		if len(resp) == 0 {
			break
		}

		for _, rf := range resp {
			fill, ok := mapRawFill(rf, address)
			if !ok {
				slog.Debug("skipping malformed fill", "wallet", shortAddr(address), "id", rf.ID)
				continue
			}
			if !fillStatusOK(rf.Status) {
				continue
			}
			if !fill.Timestamp.After(since) {
				continue
			}
			all = append(all, fill)
		}

		slog.Debug("fetched fills page",
			"wallet", shortAddr(address),
			"page", page,
			"count", len(resp),
			"kept", len(all),
		)

		if len(resp) < fillsPerPage {
			break
		}
	}

	return all, nil
}

// fillStatusOK acepta solo fills ejecutados (total o parcialmente).
func fillStatusOK(status string) bool {
	switch strings.ToUpper(status) {
	case "FILLED", "PARTIALLY_FILLED", "CONFIRMED", "MATCHED", "MINED":
		return true
	default:
		return false
	}
}

func shortAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:10] + "..."
}
