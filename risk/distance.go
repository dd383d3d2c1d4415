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

	"github.com/penny-vault/pv-risk/data"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"
)

// CreditRisk is a distance-to-default and the implied one year default
// probability N(-DD). Method distinguishes the two conventions, which are
// never merged.
type CreditRisk struct {
	Method             Method  `json:"method"`
	DistanceToDefault  float64 `json:"distanceToDefault"`
	DefaultProbability float64 `json:"defaultProbability"`
}

func newCreditRisk(method Method, dd float64) *CreditRisk {
	return &CreditRisk{
		Method:             method,
		DistanceToDefault:  dd,
		DefaultProbability: distuv.UnitNormal.CDF(-dd),
	}
}

// DefaultPoint is the KMV debt threshold: current liabilities plus half of the
// non-current liabilities
func DefaultPoint(snap data.FinancialSnapshot) float64 {
	return snap.TotalCurrentLiabilities + 0.5*snap.TotalNoncurrentLiabilities
}

// DistanceToDefaultDirect is the closed form Merton distance-to-default that
// proxies asset value with book total assets and asset volatility with the
// volatility of daily log equity returns:
//
//	DD = [(mu - sigma^2/2) * 252 + ln(TA / (CL + NCL/2))] / (sigma * sqrt(252))
func DistanceToDefaultDirect(latest data.FinancialSnapshot, logReturns *ReturnSeries) (*CreditRisk, error) {
	if logReturns == nil || logReturns.Kind != LogReturn {
		return nil, fmt.Errorf("%w: direct distance-to-default requires log returns", ErrInvalidParameter)
	}
	if logReturns.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 log returns, have %d", ErrInsufficientData, logReturns.Len())
	}

	if latest.TotalAssets == 0 {
		return nil, &data.MissingFieldError{Field: "TOTAL_ASSETS", ReportDate: latest.ReportDate}
	}
	if latest.TotalCurrentLiabilities == 0 {
		return nil, &data.MissingFieldError{Field: "TOTAL_CURRENT_LIAB", ReportDate: latest.ReportDate}
	}

	dp := DefaultPoint(latest)
	if dp <= 0 || latest.TotalAssets < 0 {
		return nil, fmt.Errorf("%w: default point %v and total assets %v must be positive", ErrInvalidParameter, dp, latest.TotalAssets)
	}

	mu := logReturns.Mean()
	sigma := logReturns.StdDev()
	if sigma == 0 {
		return nil, fmt.Errorf("%w: log return volatility is zero", ErrInvalidParameter)
	}

	dd := ((mu-0.5*sigma*sigma)*TradingDaysPerYear + math.Log(latest.TotalAssets/dp)) / (sigma * math.Sqrt(TradingDaysPerYear))

	res := newCreditRisk(MethodMertonDirect, dd)
	log.Debug().Float64("Mu", mu).Float64("Sigma", sigma).Float64("DefaultPoint", dp).
		Float64("DD", dd).Float64("PD", res.DefaultProbability).Msg("direct distance-to-default")

	return res, nil
}

// DistanceToDefaultKMV uses the solved asset value and volatility with the
// linear KMV distance: DD = (Va - D) / (Va * sigma_a)
func DistanceToDefaultKMV(est *AssetEstimate, defaultPoint float64) (*CreditRisk, error) {
	if est == nil {
		return nil, fmt.Errorf("%w: missing asset estimate", ErrInvalidParameter)
	}
	if est.AssetValue <= 0 || est.AssetVolatility <= 0 {
		return nil, fmt.Errorf("%w: asset value %v and volatility %v must be positive", ErrInvalidParameter, est.AssetValue, est.AssetVolatility)
	}
	if defaultPoint <= 0 || math.IsNaN(defaultPoint) {
		return nil, fmt.Errorf("%w: default point %v must be positive", ErrInvalidParameter, defaultPoint)
	}

	dd := (est.AssetValue - defaultPoint) / (est.AssetValue * est.AssetVolatility)
	res := newCreditRisk(MethodKMV, dd)

	log.Debug().Float64("AssetValue", est.AssetValue).Float64("AssetVolatility", est.AssetVolatility).
		Float64("DefaultPoint", defaultPoint).Float64("DD", dd).Float64("PD", res.DefaultProbability).Msg("KMV distance-to-default")

	return res, nil
}
