package balance

import (
	"context"
	"errors"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Load resolves the balance for snap's selection: one account when
// selected, the aggregate of every listed account otherwise. With no
// accounts it returns (nil, nil).
func (a *Aggregator) Load(ctx context.Context, snap account.Snapshot) (*backend.Balance, error) {
	if selected := snap.Selected; selected != nil {
		bal, err := a.fetcher.Balance(ctx, selected.ID)
		if err != nil {
			a.logger.WithError(err).WithAccount(selected.ID).Error("Failed to load balance")
			return nil, err
		}
		return bal, nil
	}

	ids := snap.IDs()
	if len(ids) == 0 {
		return nil, nil
	}
	return a.Aggregate(ctx, ids)
}

// ErrorMessage maps a Load error to the text shown to the user
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoBalances) {
		return MsgNoBalances
	}
	return backend.DetailOf(err, MsgSingleFailure)
}
