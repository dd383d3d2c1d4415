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


package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-risk/data"
	"github.com/penny-vault/pv-risk/risk"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// report is what every command prints, either as a table or as JSON
type report struct {
	RunID       string     `json:"runId"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Title       string     `json:"title"`
	Columns     []string   `json:"-"`
	Rows        [][]string `json:"-"`
	Result      any        `json:"result"`
}

func newReport(title string, columns ...string) *report {
	return &report{
		RunID:   runID,
		Title:   title,
		Columns: columns,
	}
}

func (r *report) append(row ...string) {
	r.Rows = append(r.Rows, row)
}

// write renders the report as an ASCII table or, with --json, as indented JSON
func (r *report) write(w io.Writer) error {
	if jsonOutput {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("could not serialize report")
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(r.Columns)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, row := range r.Rows {
		table.Append(row)
	}
	table.Render()

	header := r.Title
	if r.Fingerprint != "" {
		header += fmt.Sprintf(" (input %s)", r.Fingerprint)
	}
	_, err := fmt.Fprintf(w, "%s\nRun: %s\n\n%s", header, r.RunID, s.String())
	return err
}

// parameters builds the VaR / Z-score inputs from the risk.* keys
func parameters() (risk.Parameters, error) {
	params := risk.Parameters{
		Confidence:    viper.GetFloat64("risk.confidence"),
		Capital:       viper.GetFloat64("risk.capital"),
		HoldingPeriod: viper.GetInt("risk.holding_period"),
		Category:      risk.Manufacturing,
	}

	if name := viper.GetString("risk.category"); name != "" {
		category, err := risk.ParseCategory(name)
		if err != nil {
			return params, err
		}
		params.Category = category
	}

	return params, params.Validate()
}

func csvOptions() data.CSVOptions {
	return data.CSVOptions{
		Encoding:       viper.GetString("input.encoding"),
		RatesInPercent: viper.GetBool("rates.percent"),
		CurveName:      viper.GetString("rates.curve"),
	}
}

// window parses optional begin / end dates; empty strings leave the bound open
func window(begin, end string) (data.Window, error) {
	var w data.Window
	if begin != "" {
		dt, err := data.ParseDate(begin)
		if err != nil {
			return w, err
		}
		w.Begin = dt
	}
	if end != "" {
		dt, err := data.ParseDate(end)
		if err != nil {
			return w, err
		}
		w.End = dt
	}
	return w, w.Valid()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
