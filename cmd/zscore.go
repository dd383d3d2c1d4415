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
	"strconv"

	"github.com/penny-vault/pv-risk/data"
	"github.com/penny-vault/pv-risk/risk"
	"github.com/spf13/cobra"
)

type zoned struct {
	risk.ZScore
	Zone risk.Zone `json:"zone"`
}

func init() {
	rootCmd.AddCommand(zscoreCmd)
}

var zscoreCmd = &cobra.Command{
	Use:   "zscore <reports.json|reports.toml>",
	Short: "Altman Z-score for the three most recent annual reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parameters()
		if err != nil {
			return err
		}

		snapshots, err := data.LoadSnapshots(args[0])
		if err != nil {
			return err
		}

		trajectory, err := risk.AltmanZScore(snapshots, params.Category)
		if err != nil {
			return err
		}

		latest, _ := snapshots.Latest()
		title := fmt.Sprintf("Altman Z-score (%s)", params.Category)
		if latest.SecurityName != "" {
			title = fmt.Sprintf("%s: %s", latest.SecurityName, title)
		}

		rpt := newReport(title, "Fiscal Year", "Report Date", "Z", "Zone")
		scored := make([]zoned, 0, len(trajectory))
		for _, z := range trajectory {
			scored = append(scored, zoned{ZScore: z, Zone: z.Zone()})
			rpt.append(strconv.Itoa(z.FiscalYear), z.ReportDate.Format(data.DateLayout), ratio(z.Score), string(z.Zone()))
		}
		rpt.Result = scored

		return rpt.write(cmd.OutOrStdout())
	},
}
