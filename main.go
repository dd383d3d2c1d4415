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


package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/penny-vault/pv-risk/cmd"
	"github.com/penny-vault/pv-risk/risk"

	"github.com/spf13/viper"
)

func configureViper() {
	params := risk.DefaultParameters()
	viper.SetDefault("risk.confidence", params.Confidence)
	viper.SetDefault("risk.capital", params.Capital)
	viper.SetDefault("risk.holding_period", params.HoldingPeriod)
	viper.SetDefault("risk.category", string(params.Category))
	viper.SetDefault("montecarlo.samples", risk.DefaultMonteCarloSamples)
	viper.SetDefault("montecarlo.workers", 1)
	viper.SetDefault("merton.max_iterations", risk.DefaultSolverIterations)
	viper.SetDefault("merton.tolerance", risk.DefaultSolverTolerance)
	viper.SetDefault("merton.horizon", 1.0)
	viper.SetDefault("kmv.tenor", risk.DefaultTenor)
	viper.SetDefault("rates.percent", true)
	viper.SetDefault("input.encoding", "utf-8")

	// read config file
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/pv-risk/")
	viper.AddConfigPath("$HOME/.config/pv-risk")
	viper.AddConfigPath(".")

	// the config file is optional; flags and PVRISK_* variables cover every key
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "fatal error config file: %s\n", err)
			os.Exit(1)
		}
	}
}

func main() {
	configureViper()
	cmd.Execute()
}
