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
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	exprand "golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const DefaultMonteCarloSamples = 10_000

// MonteCarloOptions configures the simulation. A nil Seed draws a fresh seed
// from the operating system, so unseeded runs differ from one another. With a
// seed the estimate is bit-for-bit reproducible for the same Samples and Workers.
type MonteCarloOptions struct {
	Samples int
	Seed    *uint64
	Workers int
}

// DefaultMonteCarloOptions draws 10,000 samples on a single worker without a seed
func DefaultMonteCarloOptions() MonteCarloOptions {
	return MonteCarloOptions{
		Samples: DefaultMonteCarloSamples,
		Workers: 1,
	}
}

// MonteCarloVaR fits a normal distribution to the returns, simulates Samples
// returns from it and reports the negated (1 - c) percentile of the simulated
// distribution scaled by capital, using the same sign convention as
// HistoricalVaR and ParametricVaR.
func MonteCarloVaR(rs *ReturnSeries, params Parameters, opts MonteCarloOptions) (*VaREstimate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if opts.Samples <= 0 {
		return nil, fmt.Errorf("%w: sample size %d must be positive", ErrInvalidParameter, opts.Samples)
	}

	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Samples {
		opts.Workers = opts.Samples
	}

	n := rs.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: monte carlo VaR needs at least 2 returns, have %d", ErrInsufficientData, n)
	}

	var seed uint64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		var err error
		if seed, err = randomSeed(); err != nil {
			return nil, err
		}
	}

	mu := rs.Mean()
	sigma := rs.StdDev()

	simulated, err := simulateNormal(mu, sigma, opts.Samples, opts.Workers, seed)
	if err != nil {
		return nil, err
	}

	sort.Float64s(simulated)
	q := stat.Quantile(1.0-params.Confidence, stat.LinInterp, simulated, nil)

	est := &VaREstimate{
		Method:        MethodMonteCarlo,
		Confidence:    params.Confidence,
		Capital:       params.Capital,
		HoldingPeriod: params.HoldingPeriod,
		Observations:  n,
		Value:         -q * params.Capital * params.horizonScale(),
		Seed:          &seed,
	}

	log.Debug().Int("Samples", opts.Samples).Int("Workers", opts.Workers).Uint64("Seed", seed).
		Float64("Mu", mu).Float64("Sigma", sigma).Float64("Percentile", q).Float64("VaR", est.Value).
		Msg("monte carlo VaR")

	return est, nil
}

// simulateNormal fills a slice with draws from N(mu, sigma). The slice is cut
// into one contiguous chunk per worker; worker k draws from its own source
// seeded deterministically from seed and k.
func simulateNormal(mu, sigma float64, samples, workers int, seed uint64) ([]float64, error) {
	out := make([]float64, samples)
	if sigma == 0 {
		for idx := range out {
			out[idx] = mu
		}
		return out, nil
	}

	chunk := samples / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		begin := w * chunk
		end := begin + chunk
		if w == workers-1 {
			end = samples
		}

		part := out[begin:end]
		workerSeed := seed + uint64(w)*0x9E3779B97F4A7C15

		g.Go(func() error {
			dist := distuv.Normal{
				Mu:    mu,
				Sigma: sigma,
				Src:   exprand.NewSource(workerSeed),
			}
			for idx := range part {
				part[idx] = dist.Rand()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func randomSeed() (uint64, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		log.Error().Err(err).Msg("could not read random seed")
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}
