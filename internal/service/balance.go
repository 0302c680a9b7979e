package service

import (
	"log/slog"
	"math/big"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/engine"
	"github.com/stellarnova/limitd/internal/store"
)

// BalanceService handles user fund custody outside of orders: deposits,
// withdrawals, and balance queries. Fund movements go through the
// ledger so they serialize with order escrow.
type BalanceService struct {
	ledger   *engine.Ledger
	balances *store.BalanceStore
	assets   *domain.AssetRegistry
	logger   *slog.Logger
}

// NewBalanceService creates a new BalanceService with the given
// dependencies.
func NewBalanceService(
	ledger *engine.Ledger,
	balances *store.BalanceStore,
	assets *domain.AssetRegistry,
	logger *slog.Logger,
) *BalanceService {
	return &BalanceService{
		ledger:   ledger,
		balances: balances,
		assets:   assets,
		logger:   logger,
	}
}

// Deposit credits the user with amount of asset. Only whitelisted
// assets can be deposited.
func (s *BalanceService) Deposit(userID, asset string, amount *big.Int) error {
	if !userIDRegex.MatchString(userID) {
		return &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if !assetRegex.MatchString(asset) {
		return &domain.ValidationError{Message: "asset is not a valid asset identifier"}
	}
	if amount == nil || amount.Sign() <= 0 {
		return &domain.ValidationError{Message: "amount must be greater than zero"}
	}
	if !s.assets.Allowed(asset) {
		return domain.ErrAssetNotAllowed
	}

	s.ledger.Deposit(userID, asset, amount)
	s.logger.Info("deposit",
		slog.String("user_id", userID),
		slog.String("asset", asset),
		slog.String("amount", amount.String()),
	)
	return nil
}

// Withdraw debits the user's free balance. Escrowed funds cannot be
// withdrawn. Delisted assets remain withdrawable: the whitelist only
// gates what enters the system.
func (s *BalanceService) Withdraw(userID, asset string, amount *big.Int) error {
	if !userIDRegex.MatchString(userID) {
		return &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if amount == nil || amount.Sign() <= 0 {
		return &domain.ValidationError{Message: "amount must be greater than zero"}
	}

	if err := s.ledger.Withdraw(userID, asset, amount); err != nil {
		return err
	}
	s.logger.Info("withdrawal",
		slog.String("user_id", userID),
		slog.String("asset", asset),
		slog.String("amount", amount.String()),
	)
	return nil
}

// Balances returns the user's non-zero balances per asset.
func (s *BalanceService) Balances(userID string) (map[string]*big.Int, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return s.balances.Balances(userID), nil
}
