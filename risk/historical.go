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
	"sort"

	"github.com/rs/zerolog/log"
)

// HistoricalVaR estimates VaR from the empirical quantile of realized returns
// with no distributional assumption:
//
//	idx = floor(n * (1 - confidence))
//	VaR = -sorted[idx] * capital * sqrt(holding period)
//
// Small samples produce an estimate with an ErrLowSampleSize warning attached.
func HistoricalVaR(rs *ReturnSeries, params Parameters) (*VaREstimate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := rs.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: historical VaR needs at least 2 returns, have %d", ErrInsufficientData, n)
	}

	sorted := make([]float64, n)
	copy(sorted, rs.Values)
	sort.Float64s(sorted)

	est := &VaREstimate{
		Method:        MethodHistorical,
		Confidence:    params.Confidence,
		Capital:       params.Capital,
		HoldingPeriod: params.HoldingPeriod,
		Observations:  n,
	}

	idx := int(math.Floor(float64(n) * (1.0 - params.Confidence)))
	if idx < 0 || idx > n-1 {
		est.warn(fmt.Errorf("%w: quantile index %d clamped to [0, %d]", ErrLowSampleSize, idx, n-1))
		idx = clampInt(idx, 0, n-1)
	}

	if n < MinRecommendedObservations {
		est.warn(fmt.Errorf("%w: %d returns, at least %d recommended", ErrLowSampleSize, n, MinRecommendedObservations))
	}

	for _, w := range est.Warnings {
		log.Warn().Str("Method", string(est.Method)).Msg(w)
	}

	est.Value = -sorted[idx] * params.Capital * params.horizonScale()

	log.Debug().Int("N", n).Int("QuantileIdx", idx).Float64("Quantile", sorted[idx]).Float64("VaR", est.Value).Msg("historical VaR")
	return est, nil
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
