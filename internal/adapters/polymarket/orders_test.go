package polymarket

import (
	"testing"

	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clave de test conocida (cuenta 0 de hardhat), nunca usada en producción.
const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestDetectPricePrecision(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{0.50, 100},
		{0.99, 100},
		{0.123, 1000},
		{0.4275, 10000},
		{0.01, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, detectPricePrecision(tc.price), "price %v", tc.price)
	}
}

func TestBuildSignedOrder_BuyAmounts(t *testing.T) {
	ac, err := NewAuthClient("http://clob.test", "http://data.test", testPrivateKey)
	require.NoError(t, err)

	// 10 shares a $0.50: maker da $5.00 en USDC (6 decimales), taker
	// entrega 10 shares (6 decimales)
	signed, err := ac.buildSignedOrder("1234", domain.SideBuy, 0.50, 10, false)
	require.NoError(t, err)

	assert.Equal(t, "5000000", signed.Order.MakerAmount.String())
	assert.Equal(t, "10000000", signed.Order.TakerAmount.String())
	assert.NotEmpty(t, signed.Signature)
}

func TestBuildSignedOrder_SellReversesAmounts(t *testing.T) {
	ac, err := NewAuthClient("http://clob.test", "http://data.test", testPrivateKey)
	require.NoError(t, err)

	signed, err := ac.buildSignedOrder("1234", domain.SideSell, 0.50, 10, false)
	require.NoError(t, err)

	assert.Equal(t, "10000000", signed.Order.MakerAmount.String())
	assert.Equal(t, "5000000", signed.Order.TakerAmount.String())
}

func TestBuildSignedOrder_ThreeDecimalPrice(t *testing.T) {
	ac, err := NewAuthClient("http://clob.test", "http://data.test", testPrivateKey)
	require.NoError(t, err)

	// 7.5 shares a $0.123 → 750 cents de shares, factor 10:
	// usdc = 750 * 123 * 10 = 922500 ($0.9225)
	signed, err := ac.buildSignedOrder("1234", domain.SideBuy, 0.123, 7.5, false)
	require.NoError(t, err)

	assert.Equal(t, "922500", signed.Order.MakerAmount.String())
	assert.Equal(t, "7500000", signed.Order.TakerAmount.String())
}

func TestBuildSignedOrder_RejectsDust(t *testing.T) {
	ac, err := NewAuthClient("http://clob.test", "http://data.test", testPrivateKey)
	require.NoError(t, err)

	// Menos de un cent de share no se puede representar
	_, err = ac.buildSignedOrder("1234", domain.SideBuy, 0.50, 0.005, false)
	assert.Error(t, err)
}
