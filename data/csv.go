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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// CSVOptions controls how provider CSV exports are read
type CSVOptions struct {
	// Encoding of the file; "gbk" for files written by the original scripts,
	// anything else is treated as UTF-8
	Encoding string

	// RatesInPercent converts yield quotes such as 2.35 into 0.0235
	RatesInPercent bool

	// CurveName selects a single curve when a yield file holds several
	CurveName string
}

var (
	dateColumns      = []string{"date", "日期", "trade_date"}
	closeColumns     = []string{"close", "收盘"}
	marketCapColumns = []string{"total_market_value", "total_mv", "总市值"}
	curveColumns     = []string{"curve", "曲线名称"}
)

// LoadPrices reads a daily price CSV. Rows with an empty or unparsable close are
// skipped; the result is sorted ascending by date.
func LoadPrices(fn string, opts CSVOptions) ([]PriceObservation, error) {
	header, rows, err := readCSV(fn, opts)
	if err != nil {
		return nil, err
	}

	dateIdx, err := columnIndex(header, dateColumns)
	if err != nil {
		return nil, err
	}
	closeIdx, err := columnIndex(header, closeColumns)
	if err != nil {
		return nil, err
	}

	subLog := log.With().Str("FileName", fn).Logger()
	prices := make([]PriceObservation, 0, len(rows))
	for lineNo, row := range rows {
		dt, err := ParseDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", fn, lineNo+2, err)
		}
		val, ok := parseFloat(row[closeIdx])
		if !ok {
			subLog.Debug().Int("Line", lineNo+2).Str("Value", row[closeIdx]).Msg("skipping row without a close price")
			continue
		}
		prices = append(prices, PriceObservation{Date: dt, Close: val})
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrNoObservations)
	}

	subLog.Debug().Int("NumPrices", len(prices)).Msg("loaded prices")
	return SortPrices(prices), nil
}

// LoadMarketCaps reads a date,total_market_value CSV
func LoadMarketCaps(fn string, opts CSVOptions) ([]MarketCapObservation, error) {
	header, rows, err := readCSV(fn, opts)
	if err != nil {
		return nil, err
	}

	dateIdx, err := columnIndex(header, dateColumns)
	if err != nil {
		return nil, err
	}
	mvIdx, err := columnIndex(header, marketCapColumns)
	if err != nil {
		return nil, err
	}

	caps := make([]MarketCapObservation, 0, len(rows))
	for lineNo, row := range rows {
		dt, err := ParseDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", fn, lineNo+2, err)
		}
		val, ok := parseFloat(row[mvIdx])
		if !ok {
			continue
		}
		caps = append(caps, MarketCapObservation{Date: dt, TotalMarketValue: val})
	}

	if len(caps) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrNoObservations)
	}

	return caps, nil
}

// LoadYieldCurve reads a yield curve CSV where every column besides the date
// (and optional curve name) is a tenor. Tenor labels are normalized so that
// 1年 and 1y both become 1Y.
func LoadYieldCurve(fn string, opts CSVOptions) (YieldCurve, error) {
	header, rows, err := readCSV(fn, opts)
	if err != nil {
		return nil, err
	}

	dateIdx, err := columnIndex(header, dateColumns)
	if err != nil {
		return nil, err
	}
	curveIdx, _ := columnIndex(header, curveColumns)

	scale := 1.0
	if opts.RatesInPercent {
		scale = 0.01
	}

	curve := make(YieldCurve, 0, len(rows))
	for lineNo, row := range rows {
		if curveIdx >= 0 && opts.CurveName != "" && strings.TrimSpace(row[curveIdx]) != opts.CurveName {
			continue
		}

		dt, err := ParseDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", fn, lineNo+2, err)
		}

		obs := YieldObservation{
			Date:   dt,
			Tenors: make(map[string]float64, len(header)),
		}
		for colIdx, colName := range header {
			if colIdx == dateIdx || colIdx == curveIdx {
				continue
			}
			if val, ok := parseFloat(row[colIdx]); ok {
				obs.Tenors[NormalizeTenor(colName)] = val * scale
			}
		}
		curve = append(curve, obs)
	}

	if len(curve) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrNoObservations)
	}

	sort.SliceStable(curve, func(i, j int) bool {
		return curve[i].Date.Before(curve[j].Date)
	})

	return curve, nil
}

// NormalizeTenor maps provider tenor labels onto NM / NY form
func NormalizeTenor(label string) string {
	label = strings.ToUpper(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "个", "")
	switch {
	case strings.HasSuffix(label, "年"):
		return strings.TrimSuffix(label, "年") + "Y"
	case strings.HasSuffix(label, "月"):
		return strings.TrimSuffix(label, "月") + "M"
	}
	return label
}

func readCSV(fn string, opts CSVOptions) ([]string, [][]string, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	var src io.Reader = fh
	if strings.EqualFold(opts.Encoding, "gbk") {
		src = transform.NewReader(fh, simplifiedchinese.GBK.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%s: %w", fn, ErrNoObservations)
		}
		return nil, nil, err
	}
	for idx := range header {
		header[idx] = strings.TrimPrefix(strings.TrimSpace(header[idx]), "\ufeff")
	}

	rows := make([][]string, 0, 256)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		// pad short rows so column lookups never go out of range
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func columnIndex(header []string, candidates []string) (int, error) {
	for _, want := range candidates {
		for idx, col := range header {
			if strings.EqualFold(col, want) {
				return idx, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: one of %s", ErrUnknownColumn, strings.Join(candidates, ", "))
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
