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
	"fmt"
	"sort"
	"time"
)

// FinancialSnapshot is one fiscal year of balance sheet and income statement
// figures. Field tags follow the provider's column names so that the records
// round-trip through the same fetchers.
type FinancialSnapshot struct {
	SecurityName               string    `json:"SECURITY_NAME_ABBR" toml:"SECURITY_NAME_ABBR"`
	ReportDate                 time.Time `json:"-" toml:"-"`
	TotalCurrentAssets         float64   `json:"TOTAL_CURRENT_ASSETS" toml:"TOTAL_CURRENT_ASSETS"`
	TotalCurrentLiabilities    float64   `json:"TOTAL_CURRENT_LIAB" toml:"TOTAL_CURRENT_LIAB"`
	TotalNoncurrentLiabilities float64   `json:"TOTAL_NONCURRENT_LIAB" toml:"TOTAL_NONCURRENT_LIAB"`
	UnassignedProfit           float64   `json:"UNASSIGN_RPOFIT" toml:"UNASSIGN_RPOFIT"`
	SurplusReserve             float64   `json:"SURPLUS_RESERVE" toml:"SURPLUS_RESERVE"`
	OperatingProfit            float64   `json:"OPERATE_PROFIT" toml:"OPERATE_PROFIT"`
	TotalAssets                float64   `json:"TOTAL_ASSETS" toml:"TOTAL_ASSETS"`
	TotalLiabilities           float64   `json:"TOTAL_LIABILITIES" toml:"TOTAL_LIABILITIES"`
	TotalEquity                float64   `json:"TOTAL_EQUITY" toml:"TOTAL_EQUITY"`
	TotalOperatingIncome       float64   `json:"TOTAL_OPERATE_INCOME" toml:"TOTAL_OPERATE_INCOME"`
}

// FiscalYear is the calendar year of the report date
func (s FinancialSnapshot) FiscalYear() int {
	return s.ReportDate.Year()
}

// WorkingCapital = current assets - current liabilities
func (s FinancialSnapshot) WorkingCapital() float64 {
	return s.TotalCurrentAssets - s.TotalCurrentLiabilities
}

// RetainedEarnings = unassigned profit + surplus reserve
func (s FinancialSnapshot) RetainedEarnings() float64 {
	return s.UnassignedProfit + s.SurplusReserve
}

// Validate checks the nine fields used by the Z-score and KMV models. Balance
// sheet figures of a going concern cannot legitimately be zero, so a zero is
// reported as missing data.
func (s FinancialSnapshot) Validate() error {
	fields := []struct {
		name string
		val  float64
	}{
		{"TOTAL_CURRENT_ASSETS", s.TotalCurrentAssets},
		{"TOTAL_CURRENT_LIAB", s.TotalCurrentLiabilities},
		{"UNASSIGN_RPOFIT", s.UnassignedProfit},
		{"SURPLUS_RESERVE", s.SurplusReserve},
		{"OPERATE_PROFIT", s.OperatingProfit},
		{"TOTAL_ASSETS", s.TotalAssets},
		{"TOTAL_LIABILITIES", s.TotalLiabilities},
		{"TOTAL_EQUITY", s.TotalEquity},
		{"TOTAL_OPERATE_INCOME", s.TotalOperatingIncome},
	}

	for _, f := range fields {
		if f.val == 0 {
			return &MissingFieldError{Field: f.name, ReportDate: s.ReportDate}
		}
	}

	return nil
}

// Snapshots is an ordered collection of annual reports, most recent first
type Snapshots struct {
	items []FinancialSnapshot
}

// NewSnapshots copies the reports, normalizes their dates and orders them
// descending by report date. Two reports for the same date are rejected.
func NewSnapshots(reports []FinancialSnapshot) (*Snapshots, error) {
	items := make([]FinancialSnapshot, len(reports))
	for idx, r := range reports {
		if r.ReportDate.IsZero() {
			return nil, fmt.Errorf("%w: snapshot %d has no report date", ErrInvalidDate, idx)
		}
		r.ReportDate = NormalizeDate(r.ReportDate)
		items[idx] = r
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ReportDate.After(items[j].ReportDate)
	})

	for idx := 1; idx < len(items); idx++ {
		if items[idx].ReportDate.Equal(items[idx-1].ReportDate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, items[idx].ReportDate.Format(DateLayout))
		}
	}

	return &Snapshots{items: items}, nil
}

// Len returns the number of reports
func (s *Snapshots) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the i-th most recent report (0 == latest)
func (s *Snapshots) At(i int) FinancialSnapshot {
	return s.items[i]
}

// Latest returns the most recent report
func (s *Snapshots) Latest() (FinancialSnapshot, error) {
	if s.Len() == 0 {
		return FinancialSnapshot{}, ErrNoObservations
	}
	return s.items[0], nil
}

// Recent returns copies of the n most recent reports
func (s *Snapshots) Recent(n int) []FinancialSnapshot {
	if n > s.Len() {
		n = s.Len()
	}
	res := make([]FinancialSnapshot, n)
	copy(res, s.items[:n])
	return res
}
