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
	"time"

	"github.com/penny-vault/pv-risk/data"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ReturnKind selects how adjacent prices are differenced
type ReturnKind int

const (
	SimpleReturn ReturnKind = iota + 1
	LogReturn
)

func (k ReturnKind) String() string {
	switch k {
	case SimpleReturn:
		return "simple"
	case LogReturn:
		return "log"
	}
	return "unknown"
}

// ReturnSeries is a sequence of daily returns in ascending date order. Dates[i]
// is the day on which Values[i] was realized.
type ReturnSeries struct {
	Kind   ReturnKind
	Dates  []time.Time
	Values []float64
}

// BuildReturns converts prices into returns. Prices may be supplied in any
// order; they are copied, sorted ascending and filtered to the window before
// differencing. Returns that are undefined because the prior price is zero (or
// non-positive for log returns) are dropped.
func BuildReturns(prices []data.PriceObservation, kind ReturnKind, window data.Window) (*ReturnSeries, error) {
	if kind != SimpleReturn && kind != LogReturn {
		return nil, fmt.Errorf("%w: unknown return kind %d", ErrInvalidParameter, kind)
	}

	if err := window.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}

	sorted := data.SortPrices(prices)
	for idx := 1; idx < len(sorted); idx++ {
		if sorted[idx].Date.Equal(sorted[idx-1].Date) {
			return nil, fmt.Errorf("%w: %s %s", ErrInvalidParameter, data.ErrDuplicateDate, sorted[idx].Date.Format(data.DateLayout))
		}
	}

	filtered := data.FilterPrices(sorted, window)
	if len(filtered) < 2 {
		return nil, fmt.Errorf("%w: %d prices in window %s, need at least 2", ErrInsufficientData, len(filtered), window)
	}

	rs := &ReturnSeries{
		Kind:   kind,
		Dates:  make([]time.Time, 0, len(filtered)-1),
		Values: make([]float64, 0, len(filtered)-1),
	}

	dropped := 0
	for ii, jj := 0, 1; jj < len(filtered); ii, jj = ii+1, jj+1 {
		prev := filtered[ii].Close
		curr := filtered[jj].Close

		var r float64
		switch kind {
		case SimpleReturn:
			r = (curr - prev) / prev
		case LogReturn:
			r = math.Log(curr / prev)
		}

		if math.IsNaN(r) || math.IsInf(r, 0) {
			dropped++
			continue
		}

		rs.Dates = append(rs.Dates, filtered[jj].Date)
		rs.Values = append(rs.Values, r)
	}

	if dropped > 0 {
		log.Debug().Int("Dropped", dropped).Str("Kind", kind.String()).Msg("dropped undefined returns")
	}

	if len(rs.Values) == 0 {
		return nil, fmt.Errorf("%w: no defined returns in window %s", ErrInsufficientData, window)
	}

	return rs, nil
}

// Len returns the number of returns
func (rs *ReturnSeries) Len() int {
	return len(rs.Values)
}

// Mean is the arithmetic mean of the returns
func (rs *ReturnSeries) Mean() float64 {
	return stat.Mean(rs.Values, nil)
}

// StdDev is the sample standard deviation (n-1 divisor). A single return has
// no spread and reports 0.
func (rs *ReturnSeries) StdDev() float64 {
	if len(rs.Values) < 2 {
		return 0
	}
	return stat.StdDev(rs.Values, nil)
}

// AnnualizedVolatility scales the daily standard deviation by sqrt(252)
func (rs *ReturnSeries) AnnualizedVolatility() float64 {
	return rs.StdDev() * math.Sqrt(TradingDaysPerYear)
}

// Scale returns a copy of the series with every return multiplied by k
func (rs *ReturnSeries) Scale(k float64) *ReturnSeries {
	scaled := &ReturnSeries{
		Kind:   rs.Kind,
		Dates:  make([]time.Time, len(rs.Dates)),
		Values: make([]float64, len(rs.Values)),
	}
	copy(scaled.Dates, rs.Dates)
	floats.ScaleTo(scaled.Values, k, rs.Values)
	return scaled
}

// FromValues wraps raw return values; dates are left empty
func FromValues(kind ReturnKind, vals []float64) *ReturnSeries {
	rs := &ReturnSeries{
		Kind:   kind,
		Values: make([]float64, len(vals)),
	}
	copy(rs.Values, vals)
	return rs
}
