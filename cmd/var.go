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
	"strings"

	"github.com/penny-vault/pv-risk/data"
	"github.com/penny-vault/pv-risk/risk"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	varMethods    []string
	varReturnKind string
	varBegin      string
	varEnd        string
	varVolatility float64
)

func init() {
	rootCmd.AddCommand(varCmd)

	varCmd.Flags().StringSliceVar(&varMethods, "method", []string{"historical", "parametric", "monte-carlo"}, "VaR methods to run")
	varCmd.Flags().StringVar(&varReturnKind, "returns", "simple", "Return kind: simple or log")
	varCmd.Flags().StringVar(&varBegin, "begin", "", "First price date to use (inclusive)")
	varCmd.Flags().StringVar(&varEnd, "end", "", "Last price date to use (inclusive)")
	varCmd.Flags().Float64Var(&varVolatility, "volatility", 0, "Also report VaR for this annualized volatility")

	viper.BindEnv("montecarlo.samples", "PVRISK_MC_SAMPLES")
	varCmd.Flags().Int("samples", risk.DefaultMonteCarloSamples, "Number of Monte Carlo draws")
	viper.BindPFlag("montecarlo.samples", varCmd.Flags().Lookup("samples"))

	viper.BindEnv("montecarlo.seed", "PVRISK_MC_SEED")
	varCmd.Flags().Uint64("seed", 0, "Seed for reproducible Monte Carlo runs")
	viper.BindPFlag("montecarlo.seed", varCmd.Flags().Lookup("seed"))

	viper.BindEnv("montecarlo.workers", "PVRISK_MC_WORKERS")
	varCmd.Flags().Int("workers", 1, "Monte Carlo worker goroutines")
	viper.BindPFlag("montecarlo.workers", varCmd.Flags().Lookup("workers"))
}

var varCmd = &cobra.Command{
	Use:   "var <prices.csv>",
	Short: "Estimate one-day value at risk from a daily price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parameters()
		if err != nil {
			return err
		}

		kind, err := parseReturnKind(varReturnKind)
		if err != nil {
			return err
		}

		w, err := window(varBegin, varEnd)
		if err != nil {
			return err
		}

		prices, err := data.LoadPrices(args[0], csvOptions())
		if err != nil {
			return err
		}

		returns, err := risk.BuildReturns(prices, kind, w)
		if err != nil {
			return err
		}

		subLog := log.With().Str("FileName", args[0]).Str("Window", w.String()).Int("NumReturns", returns.Len()).Logger()

		estimates := make([]*risk.VaREstimate, 0, len(varMethods)+1)
		for _, method := range varMethods {
			var est *risk.VaREstimate
			switch risk.Method(strings.ToLower(strings.TrimSpace(method))) {
			case risk.MethodHistorical:
				est, err = risk.HistoricalVaR(returns, params)
			case risk.MethodParametric:
				est, err = risk.ParametricVaR(returns, params)
			case risk.MethodMonteCarlo:
				est, err = risk.MonteCarloVaR(returns, params, monteCarloOptions())
			default:
				return fmt.Errorf("%w: unknown VaR method %q", risk.ErrInvalidParameter, method)
			}
			if err != nil {
				subLog.Error().Err(err).Str("Method", method).Msg("VaR estimate failed")
				return err
			}
			estimates = append(estimates, est)
		}

		if varVolatility > 0 {
			est, err := risk.ParametricVaRFromVolatility(varVolatility, params)
			if err != nil {
				return err
			}
			estimates = append(estimates, est)
		}

		rpt := newReport(fmt.Sprintf("Value at risk: %s", args[0]), "Method", "Confidence", "Capital", "Days", "Returns", "VaR", "Notes")
		rpt.Fingerprint = data.Fingerprint(prices)
		rpt.Result = estimates
		for _, est := range estimates {
			notes := strings.Join(est.Warnings, "; ")
			if est.Seed != nil {
				notes = strings.TrimPrefix(notes+"; seed "+strconv.FormatUint(*est.Seed, 10), "; ")
			}
			rpt.append(string(est.Method), ratio(est.Confidence), money(est.Capital),
				strconv.Itoa(est.HoldingPeriod), strconv.Itoa(est.Observations), money(est.Value), notes)
		}

		return rpt.write(cmd.OutOrStdout())
	},
}

func parseReturnKind(s string) (risk.ReturnKind, error) {
	switch strings.ToLower(s) {
	case "simple":
		return risk.SimpleReturn, nil
	case "log":
		return risk.LogReturn, nil
	}
	return 0, fmt.Errorf("%w: unknown return kind %q", risk.ErrInvalidParameter, s)
}

func monteCarloOptions() risk.MonteCarloOptions {
	opts := risk.MonteCarloOptions{
		Samples: viper.GetInt("montecarlo.samples"),
		Workers: viper.GetInt("montecarlo.workers"),
	}
	if viper.IsSet("montecarlo.seed") {
		seed := viper.GetUint64("montecarlo.seed")
		opts.Seed = &seed
	}
	return opts
}
