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
	"strings"
)

const (
	TradingDaysPerYear = 252

	// MinRecommendedObservations is the smallest return sample for which the
	// historical quantile is considered meaningful
	MinRecommendedObservations = 20
)

// Category selects the Altman coefficient set
type Category string

const (
	Manufacturing    Category = "manufacturing"
	NonManufacturing Category = "non_manufacturing"
)

// ParseCategory accepts the canonical names plus a few common spellings
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manufacturing", "mfg", "m":
		return Manufacturing, nil
	case "non_manufacturing", "non-manufacturing", "nonmanufacturing", "non-mfg", "n":
		return NonManufacturing, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, s)
}

// Parameters are the analyst supplied inputs shared by all VaR methods
type Parameters struct {
	Confidence    float64
	Capital       float64
	HoldingPeriod int
	Category      Category
}

// DefaultParameters are 95% confidence on 100,000 of capital over one day for
// a manufacturing company.
func DefaultParameters() Parameters {
	return Parameters{
		Confidence:    0.95,
		Capital:       100_000,
		HoldingPeriod: 1,
		Category:      Manufacturing,
	}
}

// Validate checks every field and returns an ErrInvalidParameter wrapped error
// describing the first problem found
func (p Parameters) Validate() error {
	switch {
	case math.IsNaN(p.Confidence) || p.Confidence <= 0 || p.Confidence >= 1:
		return fmt.Errorf("%w: confidence level %v must be in (0, 1)", ErrInvalidParameter, p.Confidence)
	case math.IsNaN(p.Capital) || math.IsInf(p.Capital, 0) || p.Capital <= 0:
		return fmt.Errorf("%w: capital %v must be positive", ErrInvalidParameter, p.Capital)
	case p.HoldingPeriod < 1:
		return fmt.Errorf("%w: holding period %d must be at least 1 day", ErrInvalidParameter, p.HoldingPeriod)
	}

	if p.Category != "" && p.Category != Manufacturing && p.Category != NonManufacturing {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, p.Category)
	}

	return nil
}

// horizonScale is the fixed sqrt(t) adjustment from one day to the holding period
func (p Parameters) horizonScale() float64 {
	return math.Sqrt(float64(p.HoldingPeriod))
}

// Method tags the algorithm that produced an estimate
type Method string

const (
	MethodHistorical    Method = "historical"
	MethodParametric    Method = "parametric"
	MethodParametricVol Method = "parametric-volatility"
	MethodMonteCarlo    Method = "monte-carlo"
	MethodMertonDirect  Method = "merton-direct"
	MethodKMV           Method = "kmv"
)

// VaREstimate is a loss in currency units; positive numbers are losses
type VaREstimate struct {
	Method        Method   `json:"method"`
	Confidence    float64  `json:"confidence"`
	Capital       float64  `json:"capital"`
	HoldingPeriod int      `json:"holdingPeriod"`
	Observations  int      `json:"observations"`
	Value         float64  `json:"value"`
	Seed          *uint64  `json:"seed,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

func (v *VaREstimate) warn(err error) {
	v.Warnings = append(v.Warnings, err.Error())
}
