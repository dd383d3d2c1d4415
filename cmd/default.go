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

	"github.com/penny-vault/pv-risk/data"
	"github.com/penny-vault/pv-risk/risk"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	defaultMarketCapFile string
	defaultYieldFile     string
)

type defaultResult struct {
	Direct *risk.CreditRisk `json:"direct"`
	KMV    *risk.KMVResult  `json:"kmv,omitempty"`
}

func init() {
	rootCmd.AddCommand(defaultCmd)

	defaultCmd.Flags().StringVar(&defaultMarketCapFile, "market-cap", "", "CSV of daily total market value; enables the KMV estimate")
	defaultCmd.Flags().StringVar(&defaultYieldFile, "yield-curve", "", "CSV of government bond yields; enables the KMV estimate")

	viper.BindEnv("kmv.tenor", "PVRISK_KMV_TENOR")
	defaultCmd.Flags().String("tenor", risk.DefaultTenor, "Yield curve tenor used as the risk-free rate")
	viper.BindPFlag("kmv.tenor", defaultCmd.Flags().Lookup("tenor"))

	viper.BindEnv("rates.percent", "PVRISK_RATES_PERCENT")
	defaultCmd.Flags().Bool("rates-percent", true, "Yield curve quotes are in percent")
	viper.BindPFlag("rates.percent", defaultCmd.Flags().Lookup("rates-percent"))

	viper.BindEnv("rates.curve", "PVRISK_RATES_CURVE")
	defaultCmd.Flags().String("curve", "", "Curve name to select when the yield file holds several")
	viper.BindPFlag("rates.curve", defaultCmd.Flags().Lookup("curve"))

	viper.BindEnv("merton.horizon", "PVRISK_MERTON_HORIZON")
	defaultCmd.Flags().Float64("horizon", 1, "Debt horizon in years")
	viper.BindPFlag("merton.horizon", defaultCmd.Flags().Lookup("horizon"))

	viper.BindEnv("merton.max_iterations", "PVRISK_MERTON_MAX_ITERATIONS")
	defaultCmd.Flags().Int("max-iterations", risk.DefaultSolverIterations, "Newton iteration cap for the asset solver")
	viper.BindPFlag("merton.max_iterations", defaultCmd.Flags().Lookup("max-iterations"))

	viper.BindEnv("merton.tolerance", "PVRISK_MERTON_TOLERANCE")
	defaultCmd.Flags().Float64("tolerance", risk.DefaultSolverTolerance, "Scaled residual tolerance for the asset solver")
	viper.BindPFlag("merton.tolerance", defaultCmd.Flags().Lookup("tolerance"))
}

var defaultCmd = &cobra.Command{
	Use:   "default <reports.json|reports.toml> <prices.csv>",
	Short: "Distance-to-default and default probability for the latest annual report",
	Long: `Computes the closed form Merton distance-to-default from book assets and the
daily log returns of the whole price file. When --market-cap and --yield-curve are both given the
KMV estimate is computed as well by solving for the market value and volatility of assets.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshots, err := data.LoadSnapshots(args[0])
		if err != nil {
			return err
		}
		latest, err := snapshots.Latest()
		if err != nil {
			return err
		}

		prices, err := data.LoadPrices(args[1], csvOptions())
		if err != nil {
			return err
		}

		returns, err := risk.BuildReturns(prices, risk.LogReturn, data.Window{})
		if err != nil {
			return err
		}

		res := defaultResult{}
		res.Direct, err = risk.DistanceToDefaultDirect(latest, returns)
		if err != nil {
			return err
		}

		if (defaultMarketCapFile == "") != (defaultYieldFile == "") {
			log.Warn().Msg("KMV needs both --market-cap and --yield-curve; skipping")
		}

		if defaultMarketCapFile != "" && defaultYieldFile != "" {
			res.KMV, err = kmv(snapshots, prices)
			if err != nil {
				return err
			}
		}

		title := fmt.Sprintf("Default risk for report %s", latest.ReportDate.Format(data.DateLayout))
		if latest.SecurityName != "" {
			title = fmt.Sprintf("%s: %s", latest.SecurityName, title)
		}

		rpt := newReport(title, "Method", "Distance to Default", "Default Probability", "Notes")
		rpt.Fingerprint = data.Fingerprint(prices)
		rpt.Result = res
		rpt.append(string(res.Direct.Method), ratio(res.Direct.DistanceToDefault), fmt.Sprintf("%.6f", res.Direct.DefaultProbability),
			fmt.Sprintf("%d log returns", returns.Len()))
		if res.KMV != nil {
			rpt.append(string(res.KMV.Credit.Method), ratio(res.KMV.Credit.DistanceToDefault), fmt.Sprintf("%.6f", res.KMV.Credit.DefaultProbability),
				fmt.Sprintf("Va %s, sigma_a %s, DP %s, rf %s (%s)", money(res.KMV.Assets.AssetValue), ratio(res.KMV.Assets.AssetVolatility),
					money(res.KMV.DefaultPoint), ratio(res.KMV.RiskFreeRate), res.KMV.Assets.Solver))
		}

		return rpt.write(cmd.OutOrStdout())
	},
}

func kmv(snapshots *data.Snapshots, prices []data.PriceObservation) (*risk.KMVResult, error) {
	opts := csvOptions()

	caps, err := data.LoadMarketCaps(defaultMarketCapFile, opts)
	if err != nil {
		return nil, err
	}

	curve, err := data.LoadYieldCurve(defaultYieldFile, opts)
	if err != nil {
		return nil, err
	}

	return risk.EstimateKMV(risk.KMVInput{
		Snapshots:  snapshots,
		Prices:     prices,
		MarketCaps: caps,
		Curve:      curve,
		Tenor:      viper.GetString("kmv.tenor"),
		Horizon:    viper.GetFloat64("merton.horizon"),
	}, risk.SolverOptions{
		MaxIterations: viper.GetInt("merton.max_iterations"),
		Tolerance:     viper.GetFloat64("merton.tolerance"),
	})
}
