package eligibility

import (
	"context"
	"errors"
	"fmt"

	"pokerhub/models"
)

// ErrNotEligible wraps every eligibility rejection so callers can map the
// whole family to one HTTP status while keeping the specific reason.
var ErrNotEligible = errors.New("not eligible")

// Checker decides whether a player may register. A nil error means
// eligible; otherwise the error carries the reason for the player.
type Checker interface {
	Check(ctx context.Context, playerID string) error
}

// BalanceFunc looks up a player's balance for minimum-balance gates. What
// the balance denominates is up to the deployment.
type BalanceFunc func(ctx context.Context, playerID string) (int, error)

// FromConfig builds the checker chain for a tournament config. A nil
// config, or one with no rules, admits everyone.
func FromConfig(cfg *models.EligibilityConfig, balance BalanceFunc) Checker {
	if cfg == nil {
		return allowAll{}
	}
	var checks []Checker
	if len(cfg.AllowList) > 0 {
		checks = append(checks, NewAllowList(cfg.AllowList))
	}
	if cfg.MinBalance > 0 && balance != nil {
		checks = append(checks, NewMinBalance(cfg.MinBalance, balance))
	}
	if len(checks) == 0 {
		return allowAll{}
	}
	return All(checks...)
}

type allowAll struct{}

func (allowAll) Check(context.Context, string) error { return nil }

// AllowList admits only the listed player IDs.
type AllowList struct {
	ids map[string]struct{}
}

func NewAllowList(ids []string) *AllowList {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &AllowList{ids: set}
}

func (a *AllowList) Check(_ context.Context, playerID string) error {
	if _, ok := a.ids[playerID]; !ok {
		return fmt.Errorf("%w: not on the allow list", ErrNotEligible)
	}
	return nil
}

// MinBalance admits players whose looked-up balance meets the floor.
type MinBalance struct {
	min     int
	balance BalanceFunc
}

func NewMinBalance(min int, balance BalanceFunc) *MinBalance {
	return &MinBalance{min: min, balance: balance}
}

func (m *MinBalance) Check(ctx context.Context, playerID string) error {
	bal, err := m.balance(ctx, playerID)
	if err != nil {
		return fmt.Errorf("checking balance for %s: %w", playerID, err)
	}
	if bal < m.min {
		return fmt.Errorf("%w: balance %d below required %d", ErrNotEligible, bal, m.min)
	}
	return nil
}

type chain []Checker

// All requires every checker to pass, failing on the first rejection.
func All(checks ...Checker) Checker {
	return chain(checks)
}

func (c chain) Check(ctx context.Context, playerID string) error {
	for _, check := range c {
		if err := check.Check(ctx, playerID); err != nil {
			return err
		}
	}
	return nil
}
