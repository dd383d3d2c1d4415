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
	"os"

	"github.com/penny-vault/pv-risk/common"
	"github.com/rs/zerolog/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	jsonOutput bool
	runID      string
)

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PVRISK_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVRISK_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVRISK_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVRISK_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Human readable log lines instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Risk parameters shared by every command
	viper.BindEnv("risk.confidence", "PVRISK_CONFIDENCE")
	rootCmd.PersistentFlags().Float64("confidence", 0.95, "Confidence level in (0, 1)")
	viper.BindPFlag("risk.confidence", rootCmd.PersistentFlags().Lookup("confidence"))

	viper.BindEnv("risk.capital", "PVRISK_CAPITAL")
	rootCmd.PersistentFlags().Float64("capital", 100_000, "Position value in currency units")
	viper.BindPFlag("risk.capital", rootCmd.PersistentFlags().Lookup("capital"))

	viper.BindEnv("risk.holding_period", "PVRISK_HOLDING_PERIOD")
	rootCmd.PersistentFlags().Int("holding-period", 1, "Holding period in trading days")
	viper.BindPFlag("risk.holding_period", rootCmd.PersistentFlags().Lookup("holding-period"))

	viper.BindEnv("risk.category", "PVRISK_CATEGORY")
	rootCmd.PersistentFlags().String("category", "manufacturing", "Altman model: manufacturing or non_manufacturing")
	viper.BindPFlag("risk.category", rootCmd.PersistentFlags().Lookup("category"))

	// Input files
	viper.BindEnv("input.encoding", "PVRISK_INPUT_ENCODING")
	rootCmd.PersistentFlags().String("encoding", "utf-8", "Character encoding of CSV inputs (utf-8 or gbk)")
	viper.BindPFlag("input.encoding", rootCmd.PersistentFlags().Lookup("encoding"))

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON instead of a table")
}

var rootCmd = &cobra.Command{
	Use:     common.ProgramName,
	Version: common.CurrentVersion.String(),
	Short:   "Market and credit risk metrics for a single listed security",
	Long: `Estimate value at risk, the Altman Z-score and Merton / KMV distance-to-default
from local price, market capitalization, yield curve and annual report files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		runID = common.WithRunID()
		log.Debug().Str("Command", cmd.Name()).Strs("Args", args).Msg("starting")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
