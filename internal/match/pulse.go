// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"math"
	"time"
)

// PulseHistoryCap bounds the per-opportunity pulse history ring.
const PulseHistoryCap = 50

// PulseParams are the resolved market-maker parameters for one run.
type PulseParams struct {
	// LambdaPrice scales the pulse-centering penalty in the final score.
	LambdaPrice float64

	// LiquidityK multiplies capacity to form the sigmoid denominator.
	LiquidityK float64

	// TauHours is the exponential decay time constant of net demand.
	TauHours float64
}

// PricingOverrides are optional per-request parameter overrides.
// Nil fields keep the configured value.
type PricingOverrides struct {
	LambdaPrice *float64 `json:"lambda_price,omitempty"`
	LiquidityK  *float64 `json:"liquidity_k,omitempty"`
	TauHours    *float64 `json:"tau_hours,omitempty"`
}

// WithOverrides returns the params with any non-nil overrides applied.
func (p PulseParams) WithOverrides(o *PricingOverrides) PulseParams {
	if o == nil {
		return p
	}
	if o.LambdaPrice != nil {
		p.LambdaPrice = *o.LambdaPrice
	}
	if o.LiquidityK != nil && *o.LiquidityK > 0 {
		p.LiquidityK = *o.LiquidityK
	}
	if o.TauHours != nil && *o.TauHours > 0 {
		p.TauHours = *o.TauHours
	}
	return p
}

// PulseFromDemand maps net demand to a pulse in (0, 100) via a logistic
// curve against capacity-scaled liquidity. Zero demand yields exactly
// 50; for fixed liquidity the mapping is strictly increasing in demand.
func PulseFromDemand(netDemand float64, capacity int, liquidityK float64) float64 {
	liquidity := liquidityK * math.Max(1.0, float64(capacity))
	return 100.0 * sigmoid(netDemand/liquidity)
}

// DecayDemand applies exponential decay to a net-demand accumulator for
// the elapsed interval. Non-positive tau disables decay.
func DecayDemand(net float64, elapsed time.Duration, tauHours float64) float64 {
	if tauHours <= 0 || elapsed <= 0 {
		return net
	}
	return net * math.Exp(-elapsed.Seconds()/(tauHours*3600.0))
}
