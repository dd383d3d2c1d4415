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

	"github.com/penny-vault/pv-risk/data"
)

var (
	ErrInsufficientData   = errors.New("insufficient data")
	ErrConvergenceFailure = errors.New("solver did not converge")
	ErrInvalidParameter   = errors.New("invalid parameter")

	// ErrLowSampleSize is attached to a VaREstimate as a warning; it never fails a computation
	ErrLowSampleSize = errors.New("low sample size")

	// ErrMissingFinancialData is shared with the data package so errors.Is works
	// on MissingFieldError values regardless of where they were raised
	ErrMissingFinancialData = data.ErrMissingFinancialData
)
