package service

import (
	"context"

	"github.com/adboardhq/adboard/internal/api/dto"
	"github.com/adboardhq/adboard/internal/cache"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
)

// LedgerService is the single authority for an asset's billed state: which
// months have been invoiced and whether the one-time charges were raised.
// Normal mutations are monotonic; unmarking requires the explicit
// administrative override, which is logged with the operator identity.
type LedgerService interface {
	HasInvoicedMonth(ctx context.Context, assetID string, monthKey types.MonthKey) (bool, error)
	MarkMonthInvoiced(ctx context.Context, assetID string, monthKey types.MonthKey) error
	IsChargeBilled(ctx context.Context, assetID string, chargeType types.ChargeType) (bool, error)
	MarkChargeBilled(ctx context.Context, assetID string, chargeType types.ChargeType) error

	// Override unmarks ledger state. The request must name a month key, a
	// charge type, or both, plus a reason.
	Override(ctx context.Context, assetID string, req *dto.LedgerOverrideRequest) error
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) HasInvoicedMonth(ctx context.Context, assetID string, monthKey types.MonthKey) (bool, error) {
	a, err := s.AssetRepo.Get(ctx, assetID)
	if err != nil {
		return false, err
	}
	return a.InvoicedMonths.Contains(monthKey), nil
}

// MarkMonthInvoiced records the month in the asset's ledger. Marking an
// already recorded month is a no-op, which keeps retries idempotent.
func (s *ledgerService) MarkMonthInvoiced(ctx context.Context, assetID string, monthKey types.MonthKey) error {
	a, err := s.AssetRepo.Get(ctx, assetID)
	if err != nil {
		return err
	}
	if a.InvoicedMonths.Contains(monthKey) {
		return nil
	}

	a.InvoicedMonths = a.InvoicedMonths.Add(monthKey)
	if err := s.AssetRepo.Update(ctx, a); err != nil {
		return err
	}
	s.invalidateTotals(ctx, a.CampaignID)

	s.Logger.Debugw("marked month invoiced",
		"asset_id", assetID,
		"month_key", monthKey,
	)
	return nil
}

func (s *ledgerService) IsChargeBilled(ctx context.Context, assetID string, chargeType types.ChargeType) (bool, error) {
	a, err := s.AssetRepo.Get(ctx, assetID)
	if err != nil {
		return false, err
	}
	return a.IsChargeBilled(chargeType), nil
}

func (s *ledgerService) MarkChargeBilled(ctx context.Context, assetID string, chargeType types.ChargeType) error {
	if err := chargeType.Validate(); err != nil {
		return err
	}

	a, err := s.AssetRepo.Get(ctx, assetID)
	if err != nil {
		return err
	}
	if a.IsChargeBilled(chargeType) {
		return nil
	}

	a.SetChargeBilled(chargeType, true)
	if err := s.AssetRepo.Update(ctx, a); err != nil {
		return err
	}
	s.invalidateTotals(ctx, a.CampaignID)

	s.Logger.Debugw("marked one-time charge billed",
		"asset_id", assetID,
		"charge_type", chargeType,
	)
	return nil
}

func (s *ledgerService) Override(ctx context.Context, assetID string, req *dto.LedgerOverrideRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.MonthKey == nil && req.ChargeType == nil {
		return ierr.NewError("nothing to override").
			WithHint("Provide a month key or a charge type to unmark").
			Mark(ierr.ErrValidation)
	}

	a, err := s.AssetRepo.Get(ctx, assetID)
	if err != nil {
		return err
	}

	if req.MonthKey != nil {
		a.InvoicedMonths = a.InvoicedMonths.Remove(*req.MonthKey)
	}
	if req.ChargeType != nil {
		a.SetChargeBilled(*req.ChargeType, false)
	}

	if err := s.AssetRepo.Update(ctx, a); err != nil {
		return err
	}
	s.invalidateTotals(ctx, a.CampaignID)

	s.Logger.Warnw("billing ledger override applied",
		"asset_id", assetID,
		"month_key", req.MonthKey,
		"charge_type", req.ChargeType,
		"reason", req.Reason,
		"operator", types.GetUserID(ctx),
	)
	return nil
}

// invalidateTotals drops the campaign's cached totals preview. Ledger state
// feeds the pending one-time charges, so every mutation here changes what a
// preview would show.
func (s *ledgerService) invalidateTotals(ctx context.Context, campaignID string) {
	s.Cache.DeleteByPrefix(ctx, cache.Key(cache.PrefixCampaignTotals, campaignID))
}
