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
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// snapshotRecord is the on-disk form of a FinancialSnapshot; providers publish
// the report date as a string such as "2022-12-31 00:00:00"
type snapshotRecord struct {
	SecurityName               string  `json:"SECURITY_NAME_ABBR" toml:"SECURITY_NAME_ABBR"`
	ReportDate                 string  `json:"REPORT_DATE" toml:"REPORT_DATE"`
	TotalCurrentAssets         float64 `json:"TOTAL_CURRENT_ASSETS" toml:"TOTAL_CURRENT_ASSETS"`
	TotalCurrentLiabilities    float64 `json:"TOTAL_CURRENT_LIAB" toml:"TOTAL_CURRENT_LIAB"`
	TotalNoncurrentLiabilities float64 `json:"TOTAL_NONCURRENT_LIAB" toml:"TOTAL_NONCURRENT_LIAB"`
	UnassignedProfit           float64 `json:"UNASSIGN_RPOFIT" toml:"UNASSIGN_RPOFIT"`
	SurplusReserve             float64 `json:"SURPLUS_RESERVE" toml:"SURPLUS_RESERVE"`
	OperatingProfit            float64 `json:"OPERATE_PROFIT" toml:"OPERATE_PROFIT"`
	TotalAssets                float64 `json:"TOTAL_ASSETS" toml:"TOTAL_ASSETS"`
	TotalLiabilities           float64 `json:"TOTAL_LIABILITIES" toml:"TOTAL_LIABILITIES"`
	TotalEquity                float64 `json:"TOTAL_EQUITY" toml:"TOTAL_EQUITY"`
	TotalOperatingIncome       float64 `json:"TOTAL_OPERATE_INCOME" toml:"TOTAL_OPERATE_INCOME"`
}

type snapshotFile struct {
	Snapshot []snapshotRecord `toml:"snapshot"`
}

// LoadSnapshots reads annual reports from a .json (array of records) or .toml
// ([[snapshot]] tables) file
func LoadSnapshots(fn string) (*Snapshots, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	var records []snapshotRecord
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".json":
		err = json.Unmarshal(raw, &records)
	case ".toml":
		doc := snapshotFile{}
		err = toml.Unmarshal(raw, &doc)
		records = doc.Snapshot
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fn)
	}
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not decode financial snapshots")
		return nil, err
	}

	reports := make([]FinancialSnapshot, 0, len(records))
	for _, rec := range records {
		snap, err := rec.toSnapshot()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
		reports = append(reports, snap)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrNoObservations)
	}

	return NewSnapshots(reports)
}

func (rec snapshotRecord) toSnapshot() (FinancialSnapshot, error) {
	dateStr := rec.ReportDate
	if len(dateStr) > 10 && strings.Contains(dateStr, " ") {
		dateStr = strings.SplitN(dateStr, " ", 2)[0]
	}
	reportDate, err := ParseDate(dateStr)
	if err != nil {
		return FinancialSnapshot{}, err
	}

	return FinancialSnapshot{
		SecurityName:               rec.SecurityName,
		ReportDate:                 reportDate,
		TotalCurrentAssets:         rec.TotalCurrentAssets,
		TotalCurrentLiabilities:    rec.TotalCurrentLiabilities,
		TotalNoncurrentLiabilities: rec.TotalNoncurrentLiabilities,
		UnassignedProfit:           rec.UnassignedProfit,
		SurplusReserve:             rec.SurplusReserve,
		OperatingProfit:            rec.OperatingProfit,
		TotalAssets:                rec.TotalAssets,
		TotalLiabilities:           rec.TotalLiabilities,
		TotalEquity:                rec.TotalEquity,
		TotalOperatingIncome:       rec.TotalOperatingIncome,
	}, nil
}
