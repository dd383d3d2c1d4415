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
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/penny-vault/pv-risk/risk"
)

// equityFromAssets prices equity as a call on the assets (one year horizon)
func equityFromAssets(va, sa, d, r float64) (ve, se float64) {
	d1 := (math.Log(va/d) + (r+0.5*sa*sa)) / sa
	d2 := d1 - sa
	nd1 := distuv.UnitNormal.CDF(d1)
	ve = va*nd1 - d*math.Exp(-r)*distuv.UnitNormal.CDF(d2)
	se = va * sa * nd1 / ve
	return
}

var _ = Describe("Merton asset solver", func() {
	Describe("when adjusting the risk-free rate", func() {
		It("should leave a one year horizon unchanged", func() {
			Expect(risk.AdjustRiskFreeRate(0.03, 1)).To(BeNumerically("~", 0.03, 1e-15))
		})

		It("should convert to the horizon's compounding", func() {
			Expect(risk.AdjustRiskFreeRate(0.03, 2)).To(BeNumerically("~", 0.029778313018443914, 1e-12))
		})
	})

	DescribeTable("recovering synthetic asset values",
		func(va, sa, d, r float64) {
			ve, se := equityFromAssets(va, sa, d, r)

			est, err := risk.SolveAssets(risk.MertonInput{
				EquityValue:      ve,
				EquityVolatility: se,
				DebtFace:         d,
				RiskFreeRate:     r,
				Horizon:          1,
			}, risk.DefaultSolverOptions())
			Expect(err).To(BeNil())
			Expect(est.AssetValue).To(BeNumerically("~", va, 1e-4*va))
			Expect(est.AssetVolatility).To(BeNumerically("~", sa, 1e-4*sa))
			Expect(est.RiskFreeRate).To(BeNumerically("~", r, 1e-15))
		},
		Entry("moderate leverage", 1200.0, 0.25, 800.0, 0.03),
		Entry("low leverage", 5000.0, 0.3, 1000.0, 0.02),
		Entry("high leverage", 1000.0, 0.15, 900.0, 0.02),
		Entry("zero rate", 300.0, 0.5, 250.0, 0.0),
		Entry("large balance sheet", 2e9, 0.35, 1.5e9, 0.025),
		Entry("near the default point", 1000.0, 0.05, 990.0, 0.01),
	)

	It("should converge with Newton for a well behaved firm", func() {
		ve, se := equityFromAssets(1200, 0.25, 800, 0.03)
		est, err := risk.SolveAssets(risk.MertonInput{
			EquityValue:      ve,
			EquityVolatility: se,
			DebtFace:         800,
			RiskFreeRate:     0.03,
		}, risk.SolverOptions{})
		Expect(err).To(BeNil())
		Expect(est.Solver).To(Equal("newton"))
		Expect(est.Iterations).To(BeNumerically(">", 0))
		Expect(est.Iterations).To(BeNumerically("<=", risk.DefaultSolverIterations))
	})

	It("should find the same assets with the bracketed search", func() {
		ve, se := equityFromAssets(1200, 0.25, 800, 0.03)
		est, err := risk.BracketedOnly(risk.MertonInput{
			EquityValue:      ve,
			EquityVolatility: se,
			DebtFace:         800,
			RiskFreeRate:     0.03,
		}, risk.DefaultSolverOptions())
		Expect(err).To(BeNil())
		Expect(est.Solver).To(Equal("bracketed"))
		Expect(est.AssetValue).To(BeNumerically("~", 1200, 1e-4*1200))
		Expect(est.AssetVolatility).To(BeNumerically("~", 0.25, 1e-4*0.25))
	})

	DescribeTable("solving for asset value deep in the money",
		func(ve, d, r float64) {
			in := risk.MertonInput{
				EquityValue:      ve,
				EquityVolatility: 0.5,
				DebtFace:         d,
				RiskFreeRate:     r,
				Horizon:          1,
			}
			va, err := risk.AssetValueOnly(in, 1e-4)
			Expect(err).To(BeNil())
			Expect(va).To(BeNumerically("~", ve+d*math.Exp(-r), 1e-9*(ve+d)))
		},
		Entry("thin equity", 10.0, 990.0, 0.08),
		Entry("thin equity with a high rate", 5.0, 995.0, 0.08),
		Entry("zero rate", 50.0, 950.0, 0.0),
	)

	It("should surface a convergence failure when out of iterations", func() {
		ve, se := equityFromAssets(1200, 0.25, 800, 0.03)
		_, err := risk.NewtonOnly(risk.MertonInput{
			EquityValue:      ve,
			EquityVolatility: se,
			DebtFace:         800,
			RiskFreeRate:     0.03,
		}, risk.SolverOptions{MaxIterations: 1, Tolerance: risk.DefaultSolverTolerance})
		Expect(err).To(MatchError(risk.ErrConvergenceFailure))
	})

	DescribeTable("invalid inputs",
		func(in risk.MertonInput) {
			_, err := risk.SolveAssets(in, risk.DefaultSolverOptions())
			Expect(err).To(MatchError(risk.ErrInvalidParameter))
		},
		Entry("zero equity value", risk.MertonInput{EquityValue: 0, EquityVolatility: 0.3, DebtFace: 100}),
		Entry("negative equity volatility", risk.MertonInput{EquityValue: 100, EquityVolatility: -0.3, DebtFace: 100}),
		Entry("zero debt", risk.MertonInput{EquityValue: 100, EquityVolatility: 0.3, DebtFace: 0}),
		Entry("NaN rate", risk.MertonInput{EquityValue: 100, EquityVolatility: 0.3, DebtFace: 100, RiskFreeRate: math.NaN()}),
		Entry("negative horizon", risk.MertonInput{EquityValue: 100, EquityVolatility: 0.3, DebtFace: 100, Horizon: -1}),
	)
})

var _ = Describe("Bracketed root search", func() {
	It("should find a root of a monotone function", func() {
		root, err := risk.Fsolve(func(x float64) float64 { return x*x*x - 2 }, 0, 2, 1e-14)
		Expect(err).To(BeNil())
		Expect(root).To(BeNumerically("~", math.Cbrt(2), 1e-12))
	})

	It("should accept a root on the boundary", func() {
		root, err := risk.Fsolve(func(x float64) float64 { return x - 1 }, 1, 3, 1e-12)
		Expect(err).To(BeNil())
		Expect(root).To(Equal(1.0))
	})

	It("should fail when the root is not bracketed", func() {
		_, err := risk.Fsolve(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-12)
		Expect(err).To(MatchError(risk.ErrConvergenceFailure))
	})
})
