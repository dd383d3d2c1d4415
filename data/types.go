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

package data

import (
	"sort"
	"time"
)

// PriceObservation is a daily closing price
type PriceObservation struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// MarketCapObservation is the total market value of the issuer's equity on a day
type MarketCapObservation struct {
	Date             time.Time `json:"date"`
	TotalMarketValue float64   `json:"total_market_value"`
}

// YieldObservation holds one day of a government bond yield curve keyed by
// tenor label (e.g., 3M, 1Y, 10Y). Rates are decimals, 0.025 == 2.5%.
type YieldObservation struct {
	Date   time.Time          `json:"date"`
	Tenors map[string]float64 `json:"tenors"`
}

// YieldCurve is a yield curve history sorted ascending by date
type YieldCurve []YieldObservation

// SortPrices returns a copy of prices sorted ascending by date with every date
// normalized. The input is not modified.
func SortPrices(prices []PriceObservation) []PriceObservation {
	sorted := make([]PriceObservation, len(prices))
	for idx, p := range prices {
		sorted[idx] = PriceObservation{Date: NormalizeDate(p.Date), Close: p.Close}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// FilterPrices returns the observations whose date falls inside w
func FilterPrices(prices []PriceObservation, w Window) []PriceObservation {
	res := make([]PriceObservation, 0, len(prices))
	for _, p := range prices {
		if w.Contains(p.Date) {
			res = append(res, p)
		}
	}
	return res
}

// MarketCapAsOf returns the last observation on or before asOf
func MarketCapAsOf(caps []MarketCapObservation, asOf time.Time) (MarketCapObservation, error) {
	asOf = NormalizeDate(asOf)

	var (
		best  MarketCapObservation
		found bool
	)
	for _, obs := range caps {
		d := NormalizeDate(obs.Date)
		if d.After(asOf) {
			continue
		}
		if !found || d.After(best.Date) {
			best = MarketCapObservation{Date: d, TotalMarketValue: obs.TotalMarketValue}
			found = true
		}
	}

	if !found {
		return MarketCapObservation{}, ErrNoObservations
	}
	return best, nil
}

// Tenor returns the values of a single tenor inside the window, skipping days
// where the tenor was not quoted
func (yc YieldCurve) Tenor(label string, w Window) []float64 {
	vals := make([]float64, 0, len(yc))
	for _, obs := range yc {
		if !w.Contains(obs.Date) {
			continue
		}
		if v, ok := obs.Tenors[label]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}
