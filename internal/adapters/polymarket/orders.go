package polymarket

// orders.go — copy order execution via the CLOB API.
//
// Implements ports.OrderExecutor using AuthClient for L1/L2 auth. Every
// copy order is a GTC limit order signed with EIP-712; a venue-side
// refusal maps to OrderResult{Success: false} so the engine records it
// as a rejection instead of failing the fill.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	gomodel "github.com/polymarket/go-order-utils/pkg/model"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
	Success  bool   `json:"success"`
}

type clobNegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

// TradingClient implements ports.OrderExecutor against the real CLOB.
type TradingClient struct {
	auth *AuthClient

	negRiskMu    sync.Mutex
	negRiskCache map[string]bool // tokenID → uses NegRisk adapter
}

// NewTradingClient creates a live order executor.
func NewTradingClient(auth *AuthClient) *TradingClient {
	return &TradingClient{
		auth:         auth,
		negRiskCache: make(map[string]bool),
	}
}

// PlaceOrder signs and submits a GTC limit order to the CLOB.
func (tc *TradingClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: creds: %w", err)
	}

	negRisk, err := tc.isNegRisk(ctx, req.OutcomeID)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: neg-risk: %w", err)
	}

	signed, err := tc.auth.buildSignedOrder(req.OutcomeID, req.Side, req.LimitPrice, req.Size, negRisk)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       req.OutcomeID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          string(req.Side),
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: "GTC",
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: post: %w", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.OrderResult{Success: false, ErrMsg: resp.ErrorMsg}, nil
	}

	return domain.OrderResult{Success: true, OrderID: resp.OrderID}, nil
}

// isNegRisk queries (and caches) whether a token uses the NegRisk adapter.
func (tc *TradingClient) isNegRisk(ctx context.Context, tokenID string) (bool, error) {
	tc.negRiskMu.Lock()
	cached, ok := tc.negRiskCache[tokenID]
	tc.negRiskMu.Unlock()
	if ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/neg-risk?token_id=%s", tc.auth.clobBase, tokenID)
	var resp clobNegRiskResponse
	if err := tc.auth.get(ctx, tc.auth.clobLimiter, url, &resp); err != nil {
		return false, err
	}

	tc.negRiskMu.Lock()
	tc.negRiskCache[tokenID] = resp.NegRisk
	tc.negRiskMu.Unlock()
	return resp.NegRisk, nil
}

// buildSignedOrder creates an EIP-712 signed order. size is in shares,
// price in USDC per share. Integer arithmetic throughout: the CLOB API
// verifies makerAmount == price * takerAmount exactly and rejects
// floating-point drift.
func (ac *AuthClient) buildSignedOrder(tokenID string, side domain.Side, price, size float64, negRisk bool) (*gomodel.SignedOrder, error) {
	pricePrecision := detectPricePrecision(price)
	priceInt := int64(math.Round(price * float64(pricePrecision)))
	sharesCents := int64(math.Floor(size * 100))

	amountFactor := int64(1_000_000) / (100 * pricePrecision)
	usdcAmount := sharesCents * priceInt * amountFactor
	shareAmount := sharesCents * 10000

	if usdcAmount <= 0 || shareAmount <= 0 {
		return nil, fmt.Errorf("invalid amounts: usdc=%d shares=%d (price=%.4f size=%.4f)",
			usdcAmount, shareAmount, price, size)
	}

	var verifyingContract gomodel.VerifyingContract
	if negRisk {
		verifyingContract = gomodel.NegRiskCTFExchange
	} else {
		verifyingContract = gomodel.CTFExchange
	}

	orderData := &gomodel.OrderData{
		Maker:         ac.address.Hex(),
		Taker:         zeroAddress,
		TokenId:       tokenID,
		FeeRateBps:    "0",
		Nonce:         "0",
		Signer:        ac.address.Hex(),
		Expiration:    "0",
		SignatureType: gomodel.EOA,
	}

	// BUY gives USDC for shares; SELL gives shares for USDC.
	if side == domain.SideBuy {
		orderData.Side = gomodel.BUY
		orderData.MakerAmount = strconv.FormatInt(usdcAmount, 10)
		orderData.TakerAmount = strconv.FormatInt(shareAmount, 10)
	} else {
		orderData.Side = gomodel.SELL
		orderData.MakerAmount = strconv.FormatInt(shareAmount, 10)
		orderData.TakerAmount = strconv.FormatInt(usdcAmount, 10)
	}

	signed, err := ac.orderBuilder.BuildSignedOrder(ac.privateKey, orderData, verifyingContract)
	if err != nil {
		return nil, fmt.Errorf("build signed order: %w", err)
	}
	return signed, nil
}

// detectPricePrecision returns the multiplier matching the market's tick size.
// e.g. price=0.60 → 100 (tick 0.01), price=0.673 → 1000 (tick 0.001).
func detectPricePrecision(price float64) int64 {
	for _, prec := range []int64{100, 1000, 10000} {
		rounded := math.Round(price * float64(prec))
		if math.Abs(rounded/float64(prec)-price) < 1e-10 {
			return prec
		}
	}
	return 100
}
