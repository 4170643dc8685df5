package types

import (
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/samber/lo"
)

// ReferenceMonthDays is the fixed reference month length used for every
// pro-rata computation. A full calendar month always bills exactly one
// monthly rate; fractional months bill days/30 of it, regardless of whether
// the month has 28, 30 or 31 days.
const ReferenceMonthDays = 30

// BillingCycle determines how a campaign's duration is split for invoicing.
// MONTHLY produces one billing period per calendar month touched by the
// campaign; SINGLE produces exactly one period spanning the whole campaign.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleSingle  BillingCycle = "SINGLE"
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleMonthly,
		BillingCycleSingle,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Please provide a valid billing cycle").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AssetBillingMode determines how a single asset's rent is charged for a month.
// PRORATA_30: monthly rate / 30 per billable day, capped at one monthly rate.
// FULL_MONTH: the full monthly rate for any overlap with the month.
// DAILY: an explicit daily rate per billable day.
type AssetBillingMode string

const (
	AssetBillingModeProrata30 AssetBillingMode = "PRORATA_30"
	AssetBillingModeFullMonth AssetBillingMode = "FULL_MONTH"
	AssetBillingModeDaily     AssetBillingMode = "DAILY"
)

func (m AssetBillingMode) String() string {
	return string(m)
}

func (m AssetBillingMode) Validate() error {
	allowed := []AssetBillingMode{
		AssetBillingModeProrata30,
		AssetBillingModeFullMonth,
		AssetBillingModeDaily,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid asset billing mode").
			WithHint("Please provide a valid asset billing mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MountingChargeMode determines how an asset's mounting charge is computed.
type MountingChargeMode string

const (
	// MountingChargeModePerArea charges mounting rate * asset area in sqft
	MountingChargeModePerArea MountingChargeMode = "PER_AREA"
	// MountingChargeModeFixed charges a flat mounting amount
	MountingChargeModeFixed MountingChargeMode = "FIXED"
)

func (m MountingChargeMode) String() string {
	return string(m)
}

func (m MountingChargeMode) Validate() error {
	allowed := []MountingChargeMode{
		MountingChargeModePerArea,
		MountingChargeModeFixed,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid mounting charge mode").
			WithHint("Please provide a valid mounting charge mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChargeType identifies a one-time charge billed at most once per asset per campaign.
type ChargeType string

const (
	ChargeTypePrinting ChargeType = "PRINTING"
	ChargeTypeMounting ChargeType = "MOUNTING"
)

func (t ChargeType) String() string {
	return string(t)
}

func (t ChargeType) Validate() error {
	allowed := []ChargeType{
		ChargeTypePrinting,
		ChargeTypeMounting,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid charge type").
			WithHint("Please provide a valid charge type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GSTMode is the tax presentation mode resolved from the company and client
// jurisdiction codes. DUAL_TAX splits the tax into two equal half-rate
// components (CGST + SGST); SINGLE_TAX presents one full-rate component (IGST).
type GSTMode string

const (
	GSTModeDualTax   GSTMode = "DUAL_TAX"
	GSTModeSingleTax GSTMode = "SINGLE_TAX"
)

func (m GSTMode) String() string {
	return string(m)
}

func (m GSTMode) Validate() error {
	allowed := []GSTMode{
		GSTModeDualTax,
		GSTModeSingleTax,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid gst mode").
			WithHint("Please provide a valid gst mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
