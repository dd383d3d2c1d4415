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


package risk_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-risk/risk"
)

var _ = Describe("Value at risk", func() {
	var (
		params risk.Parameters
		twenty *risk.ReturnSeries
	)

	BeforeEach(func() {
		params = risk.DefaultParameters()

		vals := make([]float64, 20)
		for ii := range vals {
			vals[ii] = float64(ii-10) / 100.0
		}
		twenty = risk.FromValues(risk.SimpleReturn, vals)
	})

	Describe("when validating parameters", func() {
		DescribeTable("invalid parameters",
			func(mutate func(p *risk.Parameters)) {
				mutate(&params)
				Expect(params.Validate()).To(MatchError(risk.ErrInvalidParameter))
			},
			Entry("confidence of 0", func(p *risk.Parameters) { p.Confidence = 0 }),
			Entry("confidence of 1", func(p *risk.Parameters) { p.Confidence = 1 }),
			Entry("NaN confidence", func(p *risk.Parameters) { p.Confidence = math.NaN() }),
			Entry("zero capital", func(p *risk.Parameters) { p.Capital = 0 }),
			Entry("negative capital", func(p *risk.Parameters) { p.Capital = -5 }),
			Entry("zero holding period", func(p *risk.Parameters) { p.HoldingPeriod = 0 }),
			Entry("unknown category", func(p *risk.Parameters) { p.Category = "utilities" }),
		)

		It("should accept the defaults", func() {
			Expect(params.Validate()).To(BeNil())
		})

		It("should parse category spellings", func() {
			c, err := risk.ParseCategory(" Non-Manufacturing ")
			Expect(err).To(BeNil())
			Expect(c).To(Equal(risk.NonManufacturing))

			_, err = risk.ParseCategory("banking")
			Expect(err).To(MatchError(risk.ErrInvalidParameter))
		})
	})

	Describe("when calculating historical VaR", func() {
		DescribeTable("quantile selection",
			func(confidence, expected float64) {
				params.Confidence = confidence
				est, err := risk.HistoricalVaR(twenty, params)
				Expect(err).To(BeNil())
				Expect(est.Value).To(BeNumerically("~", expected, 1e-9))
				Expect(est.Observations).To(Equal(20))
				Expect(est.Warnings).To(BeEmpty())
			},
			Entry("at 95%", 0.95, 9_000.0),
			Entry("at 90%", 0.90, 9_000.0),
			Entry("at 99%", 0.99, 10_000.0),
			Entry("at 50%", 0.50, 0.0),
		)

		It("should be non-decreasing in confidence", func() {
			prev := math.Inf(-1)
			for _, c := range []float64{0.5, 0.6, 0.75, 0.9, 0.95, 0.975, 0.99} {
				params.Confidence = c
				est, err := risk.HistoricalVaR(twenty, params)
				Expect(err).To(BeNil())
				Expect(est.Value).To(BeNumerically(">=", prev))
				prev = est.Value
			}
		})

		It("should scale by the square root of the holding period", func() {
			params.HoldingPeriod = 4
			est, err := risk.HistoricalVaR(twenty, params)
			Expect(err).To(BeNil())
			Expect(est.Value).To(BeNumerically("~", 18_000.0, 1e-9))
		})

		It("should not depend on the order of the returns", func() {
			reversed := make([]float64, twenty.Len())
			for ii, v := range twenty.Values {
				reversed[len(reversed)-1-ii] = v
			}
			a, err := risk.HistoricalVaR(twenty, params)
			Expect(err).To(BeNil())
			b, err := risk.HistoricalVaR(risk.FromValues(risk.SimpleReturn, reversed), params)
			Expect(err).To(BeNil())
			Expect(a.Value).To(Equal(b.Value))
		})

		It("should warn on small samples", func() {
			rs := risk.FromValues(risk.SimpleReturn, []float64{0.01, -0.03, 0.02, -0.01, 0.0})
			est, err := risk.HistoricalVaR(rs, params)
			Expect(err).To(BeNil())
			Expect(est.Value).To(BeNumerically("~", 3_000.0, 1e-9))
			Expect(est.Warnings).To(HaveLen(1))
			Expect(est.Warnings[0]).To(ContainSubstring(risk.ErrLowSampleSize.Error()))
		})

		It("should fail with a single return", func() {
			_, err := risk.HistoricalVaR(risk.FromValues(risk.SimpleReturn, []float64{-0.02}), params)
			Expect(err).To(MatchError(risk.ErrInsufficientData))
		})

		It("should reject invalid parameters", func() {
			params.Capital = 0
			_, err := risk.HistoricalVaR(twenty, params)
			Expect(err).To(MatchError(risk.ErrInvalidParameter))
		})
	})

	Describe("when calculating parametric VaR", func() {
		var rs *risk.ReturnSeries

		BeforeEach(func() {
			rs = risk.FromValues(risk.SimpleReturn, []float64{0.01, -0.01, 0.02, -0.02})
		})

		It("should use the normal quantile of the sample moments", func() {
			est, err := risk.ParametricVaR(rs, params)
			Expect(err).To(BeNil())
			Expect(est.Method).To(Equal(risk.MethodParametric))
			Expect(est.Value).To(BeNumerically("~", 3003.0781175850298, 1e-6))
		})

		It("should be non-decreasing in confidence", func() {
			prev := math.Inf(-1)
			for _, c := range []float64{0.5, 0.8, 0.9, 0.95, 0.99} {
				params.Confidence = c
				est, err := risk.ParametricVaR(rs, params)
				Expect(err).To(BeNil())
				Expect(est.Value).To(BeNumerically(">=", prev))
				prev = est.Value
			}
		})

		It("should scale linearly with the returns", func() {
			base, err := risk.ParametricVaR(rs, params)
			Expect(err).To(BeNil())
			for _, k := range []float64{0.5, 3} {
				scaled, err := risk.ParametricVaR(rs.Scale(k), params)
				Expect(err).To(BeNil())
				Expect(scaled.Value).To(BeNumerically("~", k*base.Value, 1e-9*k*base.Value))
			}
		})

		It("should scale with the square when capital scales too", func() {
			base, err := risk.ParametricVaR(rs, params)
			Expect(err).To(BeNil())
			params.Capital *= 3
			scaled, err := risk.ParametricVaR(rs.Scale(3), params)
			Expect(err).To(BeNil())
			Expect(scaled.Value / base.Value).To(BeNumerically("~", 9.0, 1e-9))
		})

		It("should reduce to the negated mean when there is no spread", func() {
			flat := risk.FromValues(risk.SimpleReturn, []float64{0.01, 0.01, 0.01})
			est, err := risk.ParametricVaR(flat, params)
			Expect(err).To(BeNil())
			Expect(est.Value).To(BeNumerically("~", -1_000.0, 1e-9))
		})

		It("should fail with a single return", func() {
			_, err := risk.ParametricVaR(risk.FromValues(risk.SimpleReturn, []float64{0.01}), params)
			Expect(err).To(MatchError(risk.ErrInsufficientData))
		})

		It("should compute VaR from an annualized volatility", func() {
			params.Confidence = 0.99
			params.Capital = 1_000_000
			est, err := risk.ParametricVaRFromVolatility(0.2, params)
			Expect(err).To(BeNil())
			Expect(est.Method).To(Equal(risk.MethodParametricVol))
			Expect(est.Value).To(BeNumerically("~", 29309.228274932753, 1e-6))
		})

		It("should reject a negative volatility", func() {
			_, err := risk.ParametricVaRFromVolatility(-0.1, params)
			Expect(err).To(MatchError(risk.ErrInvalidParameter))
		})
	})

	Describe("when calculating Monte Carlo VaR", func() {
		var (
			rs   *risk.ReturnSeries
			opts risk.MonteCarloOptions
		)

		BeforeEach(func() {
			rs = risk.FromValues(risk.SimpleReturn, []float64{0.01, -0.01, 0.02, -0.02})
			seed := uint64(20230101)
			opts = risk.DefaultMonteCarloOptions()
			opts.Seed = &seed
		})

		It("should be reproducible with a seed", func() {
			a, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			b, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			Expect(a.Value).To(Equal(b.Value))
			Expect(*a.Seed).To(Equal(uint64(20230101)))
		})

		It("should be reproducible with several workers", func() {
			opts.Workers = 4
			a, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			b, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			Expect(a.Value).To(Equal(b.Value))
		})

		It("should report the seed it drew when none is given", func() {
			opts.Seed = nil
			est, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			Expect(est.Seed).ToNot(BeNil())
		})

		It("should draw a different seed on every unseeded run", func() {
			opts.Seed = nil
			a, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			b, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			Expect(*a.Seed).ToNot(Equal(*b.Seed))
			Expect(a.Value).ToNot(Equal(b.Value))
		})

		It("should approach the parametric estimate", func() {
			opts.Samples = 200_000
			mc, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(BeNil())
			pv, err := risk.ParametricVaR(rs, params)
			Expect(err).To(BeNil())
			Expect(mc.Method).To(Equal(risk.MethodMonteCarlo))
			Expect(mc.Value).To(BeNumerically("~", pv.Value, 0.03*pv.Value))
		})

		It("should reject a non-positive sample size", func() {
			opts.Samples = 0
			_, err := risk.MonteCarloVaR(rs, params, opts)
			Expect(err).To(MatchError(risk.ErrInvalidParameter))
		})

		It("should fail with a single return", func() {
			_, err := risk.MonteCarloVaR(risk.FromValues(risk.SimpleReturn, []float64{0.01}), params, opts)
			Expect(err).To(MatchError(risk.ErrInsufficientData))
		})
	})
})
