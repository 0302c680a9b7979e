package service

import (
	"log/slog"

	"github.com/stellarnova/limitd/internal/domain"
)

// AdminService exposes the operational toggles: asset whitelist,
// emergency pause, registered executor, and execution fee.
type AdminService struct {
	assets *domain.AssetRegistry
	params *domain.ExecutionParams
	logger *slog.Logger
}

// NewAdminService creates a new AdminService with the given dependencies.
func NewAdminService(assets *domain.AssetRegistry, params *domain.ExecutionParams, logger *slog.Logger) *AdminService {
	return &AdminService{
		assets: assets,
		params: params,
		logger: logger,
	}
}

// AllowAsset adds an asset to the trading whitelist.
func (s *AdminService) AllowAsset(asset string) error {
	if !assetRegex.MatchString(asset) {
		return &domain.ValidationError{Message: "asset is not a valid asset identifier"}
	}
	if !s.assets.Allow(asset) {
		return &domain.ValidationError{Message: "asset already whitelisted"}
	}
	s.logger.Info("asset whitelisted", slog.String("asset", asset))
	return nil
}

// RemoveAsset removes an asset from the trading whitelist. Existing
// orders and balances in the asset are unaffected.
func (s *AdminService) RemoveAsset(asset string) error {
	if !s.assets.Remove(asset) {
		return domain.ErrAssetNotAllowed
	}
	s.logger.Info("asset removed from whitelist", slog.String("asset", asset))
	return nil
}

// ListAssets returns the whitelist in lexical order.
func (s *AdminService) ListAssets() []string {
	return s.assets.List()
}

// SetPaused toggles the emergency pause flag.
func (s *AdminService) SetPaused(paused bool) {
	s.params.SetPaused(paused)
	s.logger.Info("pause state changed", slog.Bool("paused", paused))
}

// SetExecutor replaces the registered executor identity.
func (s *AdminService) SetExecutor(executorID string) error {
	if !userIDRegex.MatchString(executorID) {
		return &domain.ValidationError{
			Message: "executor_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if err := s.params.SetExecutorID(executorID); err != nil {
		return err
	}
	s.logger.Info("executor changed", slog.String("executor_id", executorID))
	return nil
}

// SetFeeBPS updates the execution fee. Fails with domain.ErrFeeTooHigh
// above domain.MaxFeeBPS.
func (s *AdminService) SetFeeBPS(feeBPS uint64) error {
	if err := s.params.SetFeeBPS(feeBPS); err != nil {
		return err
	}
	s.logger.Info("execution fee changed", slog.Uint64("fee_bps", feeBPS))
	return nil
}
