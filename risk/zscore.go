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
)

// ZScoreYears is the number of fiscal years in a trajectory
const ZScoreYears = 3

// Zone is the Altman classification of a score
type Zone string

const (
	DistressZone Zone = "distress"
	GreyZone     Zone = "grey"
	SafeZone     Zone = "safe"
)

// ZScore is the Altman score for one fiscal year
type ZScore struct {
	FiscalYear int       `json:"fiscalYear"`
	ReportDate time.Time `json:"reportDate"`
	Score      float64   `json:"score"`
	Category   Category  `json:"category"`
}

// ZScoreTrajectory holds one score per fiscal year, newest first
type ZScoreTrajectory []ZScore

type zCoefficients struct {
	workingCapital   float64
	retainedEarnings float64
	ebit             float64
	equity           float64
	sales            float64
	distress         float64
	safe             float64
}

var coefficients = map[Category]zCoefficients{
	// five factor model published for public manufacturers
	Manufacturing: {1.2, 1.4, 3.3, 0.6, 0.999, 1.81, 2.99},
	// four factor Z'' model, sales/assets dropped
	NonManufacturing: {6.56, 3.26, 6.72, 1.05, 0, 1.10, 2.60},
}

// Zone classifies the score with the cut-offs of its category
func (z ZScore) Zone() Zone {
	c := coefficients[z.Category]
	switch {
	case z.Score < c.distress:
		return DistressZone
	case z.Score > c.safe:
		return SafeZone
	default:
		return GreyZone
	}
}

// AltmanZScore scores the three most recent fiscal years. The latest report
// must carry all required fields and every scored year needs non-zero total
// assets and total liabilities.
func AltmanZScore(snapshots *data.Snapshots, category Category) (ZScoreTrajectory, error) {
	if category == "" {
		category = Manufacturing
	}
	coef, ok := coefficients[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, category)
	}

	if snapshots.Len() < ZScoreYears {
		return nil, fmt.Errorf("%w: Z-score needs %d annual reports, have %d", ErrInsufficientData, ZScoreYears, snapshots.Len())
	}

	latest, err := snapshots.Latest()
	if err != nil {
		return nil, err
	}
	if err := latest.Validate(); err != nil {
		return nil, err
	}

	trajectory := make(ZScoreTrajectory, 0, ZScoreYears)
	for _, snap := range snapshots.Recent(ZScoreYears) {
		if snap.TotalAssets == 0 {
			return nil, &data.MissingFieldError{Field: "TOTAL_ASSETS", ReportDate: snap.ReportDate}
		}
		if snap.TotalLiabilities == 0 {
			return nil, &data.MissingFieldError{Field: "TOTAL_LIABILITIES", ReportDate: snap.ReportDate}
		}

		ta := snap.TotalAssets
		score := coef.workingCapital*(snap.WorkingCapital()/ta) +
			coef.retainedEarnings*(snap.RetainedEarnings()/ta) +
			coef.ebit*(snap.OperatingProfit/ta) +
			coef.equity*(snap.TotalEquity/snap.TotalLiabilities) +
			coef.sales*(snap.TotalOperatingIncome/ta)

		trajectory = append(trajectory, ZScore{
			FiscalYear: snap.FiscalYear(),
			ReportDate: snap.ReportDate,
			Score:      score,
			Category:   category,
		})

		log.Debug().Int("FiscalYear", snap.FiscalYear()).Str("Category", string(category)).Float64("Z", score).Msg("altman z-score")
	}

	return trajectory, nil
}
