package service

import (
	"io"
	"log/slog"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/store"
)

// serviceFixture wires a ledger over fresh stores for service-level
// tests: USDC and WETH whitelisted, executor "keeper", max slippage
// 1000 bp, fee 10 bps.
type serviceFixture struct {
	ledger   *engine.Ledger
	orders   *store.OrderStore
	balances *store.BalanceStore
	assets   *domain.AssetRegistry
	params   *domain.ExecutionParams
	logger   *slog.Logger
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	contexts, err := store.NewContextStore(filepath.Join(t.TempDir(), "contexts"))
	if err != nil {
		t.Fatalf("open context store: %v", err)
	}
	t.Cleanup(func() { contexts.Close() })

	assets := domain.NewAssetRegistry()
	assets.Allow("USDC")
	assets.Allow("WETH")

	params, err := domain.NewExecutionParams("keeper", 1000, 10)
	if err != nil {
		t.Fatalf("new params: %v", err)
	}

	orders := store.NewOrderStore()
	balances := store.NewBalanceStore()

	return &serviceFixture{
		ledger:   engine.NewLedger(orders, balances, contexts, assets, params),
		orders:   orders,
		balances: balances,
		assets:   assets,
		params:   params,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *serviceFixture) createOrderRequest(userID string) CreateOrderRequest {
	return CreateOrderRequest{
		UserID:           userID,
		FromAsset:        "USDC",
		FromAmount:       big.NewInt(1000),
		ToAsset:          "WETH",
		PriceNumerator:   big.NewInt(50),
		PriceDenominator: big.NewInt(1),
		SlippageBP:       500,
		ExpiresIn:        time.Hour,
	}
}
