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
	"time"

	"github.com/penny-vault/pv-risk/data"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// DefaultTenor is the bond curve tenor used as the risk-free rate
const DefaultTenor = "1Y"

// RiskFreeRate is the mean of the tenor's quotes over the year ending on asOf
// (both ends inclusive)
func RiskFreeRate(curve data.YieldCurve, tenor string, asOf time.Time) (float64, error) {
	if tenor == "" {
		tenor = DefaultTenor
	}

	window := data.TrailingYear(asOf)
	vals := curve.Tenor(data.NormalizeTenor(tenor), window)
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: no %s quotes in %s", ErrInsufficientData, tenor, window)
	}

	rate := stat.Mean(vals, nil)
	log.Debug().Str("Tenor", tenor).Str("Window", window.String()).Int("NumQuotes", len(vals)).Float64("Rate", rate).Msg("risk-free rate")
	return rate, nil
}

// KMVInput bundles everything the KMV pipeline consumes
type KMVInput struct {
	Snapshots  *data.Snapshots
	Prices     []data.PriceObservation
	MarketCaps []data.MarketCapObservation
	Curve      data.YieldCurve
	Tenor      string
	Horizon    float64
}

// KMVResult carries the intermediate inputs next to the solved assets so the
// report can show where the probability came from
type KMVResult struct {
	ReportDate       time.Time      `json:"reportDate"`
	EquityValue      float64        `json:"equityValue"`
	EquityVolatility float64        `json:"equityVolatility"`
	DefaultPoint     float64        `json:"defaultPoint"`
	RiskFreeRate     float64        `json:"riskFreeRate"`
	Assets           *AssetEstimate `json:"assets"`
	Credit           *CreditRisk    `json:"credit"`
}

// EstimateKMV runs the full equation-solving path for the latest report:
// trailing year risk-free rate and equity volatility, equity value from the
// last market capitalization on or before the report date, default point from
// the balance sheet, then the asset solver and the KMV distance-to-default.
func EstimateKMV(in KMVInput, opts SolverOptions) (*KMVResult, error) {
	latest, err := in.Snapshots.Latest()
	if err != nil {
		return nil, fmt.Errorf("%w: no financial snapshots", ErrInsufficientData)
	}
	if err := latest.Validate(); err != nil {
		return nil, err
	}

	reportDate := latest.ReportDate
	window := data.TrailingYear(reportDate)

	rate, err := RiskFreeRate(in.Curve, in.Tenor, reportDate)
	if err != nil {
		return nil, err
	}

	returns, err := BuildReturns(in.Prices, LogReturn, window)
	if err != nil {
		return nil, err
	}
	if returns.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 log returns in %s", ErrInsufficientData, window)
	}
	equityVol := returns.AnnualizedVolatility()

	mcap, err := data.MarketCapAsOf(in.MarketCaps, reportDate)
	if err != nil {
		return nil, fmt.Errorf("%w: no market capitalization on or before %s", ErrInsufficientData, reportDate.Format(data.DateLayout))
	}

	dp := DefaultPoint(latest)

	assets, err := SolveAssets(MertonInput{
		EquityValue:      mcap.TotalMarketValue,
		EquityVolatility: equityVol,
		DebtFace:         dp,
		RiskFreeRate:     rate,
		Horizon:          in.Horizon,
	}, opts)
	if err != nil {
		return nil, err
	}

	credit, err := DistanceToDefaultKMV(assets, dp)
	if err != nil {
		return nil, err
	}

	return &KMVResult{
		ReportDate:       reportDate,
		EquityValue:      mcap.TotalMarketValue,
		EquityVolatility: equityVol,
		DefaultPoint:     dp,
		RiskFreeRate:     rate,
		Assets:           assets,
		Credit:           credit,
	}, nil
}
