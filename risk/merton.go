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
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultSolverIterations = 100
	DefaultSolverTolerance  = 1e-8

	maxStepHalvings = 40
)

// MertonInput holds the observable quantities the asset solver works from
type MertonInput struct {
	EquityValue      float64 // market value of equity, Ve
	EquityVolatility float64 // annualized equity volatility, sigma_e
	DebtFace         float64 // face value of debt, D
	RiskFreeRate     float64 // annual rate as quoted on the bond curve
	Horizon          float64 // years, defaults to 1
}

// SolverOptions bounds the iteration
type SolverOptions struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultSolverOptions caps Newton at 100 steps with a 1e-8 scaled residual
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: DefaultSolverIterations,
		Tolerance:     DefaultSolverTolerance,
	}
}

// AssetEstimate is the solved (unobservable) asset value and volatility
type AssetEstimate struct {
	AssetValue      float64 `json:"assetValue"`
	AssetVolatility float64 `json:"assetVolatility"`
	Iterations      int     `json:"iterations"`
	Solver          string  `json:"solver"`
	RiskFreeRate    float64 `json:"riskFreeRate"`
}

// AdjustRiskFreeRate converts a rate quoted on the bond curve's compounding
// period to the horizon t: r' = ((1 + r)^(1/t) - 1) * t
func AdjustRiskFreeRate(rate, horizon float64) float64 {
	return (math.Pow(1.0+rate, 1.0/horizon) - 1.0) * horizon
}

// bsm evaluates the Black-Scholes-Merton equity and volatility equations for
// a candidate (Va, sigma_a)
type bsm struct {
	ve, se, d, r, t float64
	sqrtT, disc     float64
}

type bsmPoint struct {
	f1, f2     float64
	d1, d2     float64
	nd1, phid1 float64
}

// newBSM builds the model for validated inputs; a zero horizon means one year
func newBSM(in MertonInput) *bsm {
	horizon := in.Horizon
	if horizon == 0 {
		horizon = 1
	}

	r := AdjustRiskFreeRate(in.RiskFreeRate, horizon)
	return &bsm{
		ve:    in.EquityValue,
		se:    in.EquityVolatility,
		d:     in.DebtFace,
		r:     r,
		t:     horizon,
		sqrtT: math.Sqrt(horizon),
		disc:  math.Exp(-r * horizon),
	}
}

func (m *bsm) eval(va, sa float64) bsmPoint {
	d1 := (math.Log(va) - math.Log(m.d) + (m.r+0.5*sa*sa)*m.t) / (sa * m.sqrtT)
	d2 := d1 - sa*m.sqrtT
	nd1 := distuv.UnitNormal.CDF(d1)

	return bsmPoint{
		f1:    va*nd1 - m.d*m.disc*distuv.UnitNormal.CDF(d2) - m.ve,
		f2:    va*sa*nd1/m.ve - m.se,
		d1:    d1,
		d2:    d2,
		nd1:   nd1,
		phid1: distuv.UnitNormal.Prob(d1),
	}
}

// scaled residuals make the equity (currency) and volatility equations
// comparable
func (m *bsm) merit(p bsmPoint) float64 {
	a := p.f1 / m.ve
	b := p.f2 / m.se
	return a*a + b*b
}

func (m *bsm) converged(p bsmPoint, tol float64) bool {
	return math.Abs(p.f1)/m.ve < tol && math.Abs(p.f2)/m.se < tol
}

// SolveAssets recovers asset value and asset volatility from equity value and
// equity volatility by solving
//
//	Va N(d1) - D e^{-r t} N(d2) - Ve = 0
//	Va sigma_a N(d1) / Ve - sigma_e = 0
//
// with a damped Newton iteration seeded at (Ve, sigma_e). Steps that would make
// Va or sigma_a non-positive are halved rather than accepted. When Newton
// stalls a bracketed nested solve is tried. If neither meets the tolerance the
// error wraps ErrConvergenceFailure.
func SolveAssets(in MertonInput, opts SolverOptions) (*AssetEstimate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultSolverIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultSolverTolerance
	}

	model := newBSM(in)
	r := model.r

	subLog := log.With().Float64("EquityValue", in.EquityValue).Float64("EquityVolatility", in.EquityVolatility).
		Float64("DebtFace", in.DebtFace).Float64("RiskFreeRate", r).Float64("Horizon", model.t).Logger()

	est, err := model.newton(opts)
	if err == nil {
		est.RiskFreeRate = r
		subLog.Debug().Int("Iterations", est.Iterations).Float64("AssetValue", est.AssetValue).
			Float64("AssetVolatility", est.AssetVolatility).Msg("newton converged")
		return est, nil
	}

	subLog.Warn().Err(err).Msg("newton iteration stalled; trying bracketed solve")

	est, err = model.bracketed(opts)
	if err != nil {
		subLog.Error().Err(err).Msg("asset solver did not converge")
		return nil, err
	}

	est.RiskFreeRate = r
	subLog.Debug().Float64("AssetValue", est.AssetValue).Float64("AssetVolatility", est.AssetVolatility).Msg("bracketed solve converged")
	return est, nil
}

func (in MertonInput) validate() error {
	switch {
	case !(in.EquityValue > 0) || math.IsInf(in.EquityValue, 0):
		return fmt.Errorf("%w: equity value %v must be positive", ErrInvalidParameter, in.EquityValue)
	case !(in.EquityVolatility > 0) || math.IsInf(in.EquityVolatility, 0):
		return fmt.Errorf("%w: equity volatility %v must be positive", ErrInvalidParameter, in.EquityVolatility)
	case !(in.DebtFace > 0) || math.IsInf(in.DebtFace, 0):
		return fmt.Errorf("%w: face value of debt %v must be positive", ErrInvalidParameter, in.DebtFace)
	case math.IsNaN(in.RiskFreeRate) || in.RiskFreeRate <= -1:
		return fmt.Errorf("%w: risk-free rate %v", ErrInvalidParameter, in.RiskFreeRate)
	case in.Horizon < 0 || math.IsNaN(in.Horizon):
		return fmt.Errorf("%w: horizon %v must be positive", ErrInvalidParameter, in.Horizon)
	}
	return nil
}

func (m *bsm) newton(opts SolverOptions) (*AssetEstimate, error) {
	va, sa := m.ve, m.se
	p := m.eval(va, sa)
	merit := m.merit(p)

	jac := mat.NewDense(2, 2, nil)
	rhs := mat.NewVecDense(2, nil)
	step := mat.NewVecDense(2, nil)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if m.converged(p, opts.Tolerance) {
			return &AssetEstimate{AssetValue: va, AssetVolatility: sa, Iterations: iter, Solver: "newton"}, nil
		}

		// analytic Jacobian of (f1, f2) with respect to (Va, sigma_a)
		jac.Set(0, 0, p.nd1)
		jac.Set(0, 1, va*p.phid1*m.sqrtT)
		jac.Set(1, 0, sa/m.ve*(p.nd1+p.phid1/(sa*m.sqrtT)))
		jac.Set(1, 1, va/m.ve*(p.nd1-p.phid1*p.d2))
		rhs.SetVec(0, -p.f1)
		rhs.SetVec(1, -p.f2)

		if err := step.SolveVec(jac, rhs); err != nil {
			// an ill-conditioned (but solvable) system still yields a usable step
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return nil, fmt.Errorf("%w: singular jacobian at iteration %d: %v", ErrConvergenceFailure, iter, err)
			}
		}

		accepted := false
		lambda := 1.0
		for k := 0; k < maxStepHalvings; k++ {
			cva := va + lambda*step.AtVec(0)
			csa := sa + lambda*step.AtVec(1)
			if cva > 0 && csa > 0 {
				cp := m.eval(cva, csa)
				cmerit := m.merit(cp)
				if !math.IsNaN(cmerit) && cmerit < (1-1e-4*lambda)*merit {
					va, sa, p, merit = cva, csa, cp, cmerit
					accepted = true
					break
				}
			}
			lambda *= 0.5
		}

		if !accepted {
			if m.converged(p, opts.Tolerance) {
				return &AssetEstimate{AssetValue: va, AssetVolatility: sa, Iterations: iter, Solver: "newton"}, nil
			}
			return nil, fmt.Errorf("%w: no descent step at iteration %d", ErrConvergenceFailure, iter)
		}
	}

	if m.converged(p, opts.Tolerance) {
		return &AssetEstimate{AssetValue: va, AssetVolatility: sa, Iterations: opts.MaxIterations, Solver: "newton"}, nil
	}

	return nil, fmt.Errorf("%w: residual %g after %d newton iterations", ErrConvergenceFailure, math.Sqrt(merit), opts.MaxIterations)
}

// assetValue solves the equity equation for Va with sigma_a held fixed. The
// call value is increasing in Va, below Va at Va = Ve and at least Ve at
// Va = Ve + D e^{-rt}, which brackets the root. Deep in the money the upper
// end can round to a non-positive residual, so it is widened until the sign
// changes.
func (m *bsm) assetValue(sa float64) (float64, error) {
	lo := m.ve
	hi := m.ve + m.d*m.disc
	f := func(va float64) float64 {
		return m.eval(va, sa).f1 / m.ve
	}
	for k := 0; k < 60 && f(hi) < 0; k++ {
		hi = lo + 2*(hi-lo)
	}
	return fsolve(f, lo, hi, 1e-13*hi)
}

// bracketed nests two 1-D bracketed searches: sigma_a outside, Va inside
func (m *bsm) bracketed(opts SolverOptions) (*AssetEstimate, error) {
	var innerErr error
	g := func(sa float64) float64 {
		va, err := m.assetValue(sa)
		if err != nil {
			innerErr = err
			return math.NaN()
		}
		return m.eval(va, sa).f2 / m.se
	}

	lo := m.se * 1e-6
	hi := m.se
	for k := 0; k < 60 && g(hi) <= 0; k++ {
		hi *= 2
	}
	if innerErr != nil {
		return nil, innerErr
	}

	sa, err := fsolve(g, lo, hi, 1e-13*hi)
	if innerErr != nil {
		return nil, innerErr
	}
	if err != nil {
		return nil, err
	}

	va, err := m.assetValue(sa)
	if err != nil {
		return nil, err
	}

	p := m.eval(va, sa)
	if !m.converged(p, opts.Tolerance) {
		return nil, fmt.Errorf("%w: bracketed solve residuals (%g, %g) above tolerance %g",
			ErrConvergenceFailure, p.f1/m.ve, p.f2/m.se, opts.Tolerance)
	}

	return &AssetEstimate{AssetValue: va, AssetVolatility: sa, Solver: "bracketed"}, nil
}
