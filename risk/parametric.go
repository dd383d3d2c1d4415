// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"
)

// ParametricVaR is the variance-covariance estimate assuming i.i.d. normal
// returns: VaR = -Quantile(1 - c; mu, sigma) * capital * sqrt(holding period).
// A series with no spread reduces to -mu * capital.
func ParametricVaR(rs *ReturnSeries, params Parameters) (*VaREstimate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := rs.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: parametric VaR needs at least 2 returns, have %d", ErrInsufficientData, n)
	}

	mu := rs.Mean()
	sigma := rs.StdDev()

	var q float64
	if sigma == 0 {
		q = mu
	} else {
		dist := distuv.Normal{Mu: mu, Sigma: sigma}
		q = dist.Quantile(1.0 - params.Confidence)
	}

	est := &VaREstimate{
		Method:        MethodParametric,
		Confidence:    params.Confidence,
		Capital:       params.Capital,
		HoldingPeriod: params.HoldingPeriod,
		Observations:  n,
		Value:         -q * params.Capital * params.horizonScale(),
	}

	log.Debug().Float64("Mu", mu).Float64("Sigma", sigma).Float64("Quantile", q).Float64("VaR", est.Value).Msg("parametric VaR")
	return est, nil
}

// ParametricVaRFromVolatility is the direct formulation from an annualized
// volatility with zero drift:
//
//	VaR = capital * z_c * annualVol * sqrt(holding period / 252)
func ParametricVaRFromVolatility(annualVol float64, params Parameters) (*VaREstimate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if math.IsNaN(annualVol) || annualVol < 0 {
		return nil, fmt.Errorf("%w: annualized volatility %v must be non-negative", ErrInvalidParameter, annualVol)
	}

	z := distuv.UnitNormal.Quantile(params.Confidence)
	years := float64(params.HoldingPeriod) / TradingDaysPerYear

	return &VaREstimate{
		Method:        MethodParametricVol,
		Confidence:    params.Confidence,
		Capital:       params.Capital,
		HoldingPeriod: params.HoldingPeriod,
		Value:         params.Capital * z * annualVol * math.Sqrt(years),
	}, nil
}
