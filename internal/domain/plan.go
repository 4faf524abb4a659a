package domain

import (
	"fmt"
	"strings"
)

// ─── Plan Tiers ─────────────────────────────────────────────────────────────
// The plan tier decides the transaction fee, the cashback ladder applied by
// spending-threshold merchants, and automatic-upgrade eligibility. The set is
// closed, so tiers are an enum with a capability table rather than an open
// interface.

// Plan is a user's service tier.
type Plan int

const (
	PlanStandard Plan = iota
	PlanStudent
	PlanSilver
	PlanGold
)

// Fee and cashback constants, in reference-currency units unless noted.
const (
	StandardFeeRate   = 0.002
	SilverFeeRate     = 0.001
	SilverNoFeeBelow  = 500.0
	SilverUpgradeTxns = 5     // qualifying card payments before silver → gold
	QualifyingTxnMin  = 300.0 // reference-currency floor for a qualifying payment

	// Cashback ladder thresholds over cumulative spend.
	FirstThreshold  = 100.0
	SecondThreshold = 300.0
	ThirdThreshold  = 500.0

	// Plan upgrade fees, charged in reference currency.
	SilverUpgradeFee        = 100.0
	GoldUpgradeFromStandard = 350.0
	GoldUpgradeFromSilver   = 250.0
)

// cashbackLadder holds the three-rung rates for a tier, indexed small/medium/big.
type cashbackLadder [3]float64

// Gold's ladder is descending: its small-threshold rate is its highest rung.
// That is the published rate card, not an ordering mistake.
var ladders = map[Plan]cashbackLadder{
	PlanStandard: {0.001, 0.002, 0.0025},
	PlanStudent:  {0.001, 0.002, 0.0025},
	PlanSilver:   {0.003, 0.004, 0.005},
	PlanGold:     {0.007, 0.0055, 0.005},
}

// ParsePlan maps a plan name to its tier. Unknown names are a bootstrap error.
func ParsePlan(name string) (Plan, error) {
	switch strings.ToLower(name) {
	case "standard":
		return PlanStandard, nil
	case "student":
		return PlanStudent, nil
	case "silver":
		return PlanSilver, nil
	case "gold":
		return PlanGold, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlan, name)
	}
}

// String returns the lowercase plan name used in journal entries and reports.
func (p Plan) String() string {
	switch p {
	case PlanStudent:
		return "student"
	case PlanSilver:
		return "silver"
	case PlanGold:
		return "gold"
	default:
		return "standard"
	}
}

// FeeRate returns the transaction-fee percentage for an amount expressed in
// the reference currency.
func (p Plan) FeeRate(amountRef float64) float64 {
	switch p {
	case PlanStandard:
		return StandardFeeRate
	case PlanSilver:
		if amountRef < SilverNoFeeBelow {
			return 0
		}
		return SilverFeeRate
	default: // student and gold pay no fee
		return 0
	}
}

// CashbackRate returns the tier's ladder rate for the given cumulative spend,
// in reference-currency units. Below the first threshold there is no cashback.
func (p Plan) CashbackRate(totalSpend float64) float64 {
	ladder := ladders[p]
	switch {
	case totalSpend >= ThirdThreshold:
		return ladder[2]
	case totalSpend >= SecondThreshold:
		return ladder[1]
	case totalSpend >= FirstThreshold:
		return ladder[0]
	default:
		return 0
	}
}

// AutoUpgrade reports whether the tier upgrades automatically after the given
// number of qualifying transactions. Only silver defines an upgrade path.
func (p Plan) AutoUpgrade(qualifyingTxns int) bool {
	return p == PlanSilver && qualifyingTxns >= SilverUpgradeTxns
}

// UpgradeFee returns the reference-currency fee for moving to the target
// plan, or an error text for refused moves (downgrade or same plan).
func (p Plan) UpgradeFee(target Plan) (float64, string) {
	if p == target {
		return 0, "The user already has the " + target.String() + " plan."
	}
	switch {
	case (p == PlanStandard || p == PlanStudent) && target == PlanSilver:
		return SilverUpgradeFee, ""
	case (p == PlanStandard || p == PlanStudent) && target == PlanGold:
		return GoldUpgradeFromStandard, ""
	case p == PlanSilver && target == PlanGold:
		return GoldUpgradeFromSilver, ""
	}
	return 0, "You cannot downgrade your plan."
}
