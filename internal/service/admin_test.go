package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stellarnova/limitd/internal/domain"
)

func newAdminService(t *testing.T) (*AdminService, *domain.AssetRegistry, *domain.ExecutionParams) {
	t.Helper()
	assets := domain.NewAssetRegistry()
	params, err := domain.NewExecutionParams("keeper", 1000, 10)
	if err != nil {
		t.Fatalf("new params: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAdminService(assets, params, logger), assets, params
}

func TestAdminService_Assets(t *testing.T) {
	svc, assets, _ := newAdminService(t)

	if err := svc.AllowAsset("USDC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assets.Allowed("USDC") {
		t.Error("USDC should be allowed")
	}

	var verr *domain.ValidationError
	if err := svc.AllowAsset("USDC"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for repeat allow, got %v", err)
	}
	if err := svc.AllowAsset("usdc"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for malformed asset, got %v", err)
	}

	if err := svc.RemoveAsset("USDC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveAsset("USDC"); !errors.Is(err, domain.ErrAssetNotAllowed) {
		t.Errorf("expected ErrAssetNotAllowed, got %v", err)
	}

	svc.AllowAsset("WETH")
	svc.AllowAsset("DAI")
	got := svc.ListAssets()
	if len(got) != 2 || got[0] != "DAI" || got[1] != "WETH" {
		t.Errorf("ListAssets() = %v, want [DAI WETH]", got)
	}
}

func TestAdminService_PauseExecutorFee(t *testing.T) {
	svc, _, params := newAdminService(t)

	svc.SetPaused(true)
	if !params.Paused() {
		t.Error("expected paused")
	}
	svc.SetPaused(false)
	if params.Paused() {
		t.Error("expected unpaused")
	}

	if err := svc.SetExecutor("keeper-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.ExecutorID() != "keeper-2" {
		t.Errorf("executor = %q, want keeper-2", params.ExecutorID())
	}
	var verr *domain.ValidationError
	if err := svc.SetExecutor("bad id!"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}

	if err := svc.SetFeeBPS(100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.FeeBPS() != 100 {
		t.Errorf("fee = %d, want 100", params.FeeBPS())
	}
	if err := svc.SetFeeBPS(domain.MaxFeeBPS + 1); !errors.Is(err, domain.ErrFeeTooHigh) {
		t.Errorf("expected ErrFeeTooHigh, got %v", err)
	}
}
