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

package data

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingFinancialData = errors.New("missing financial data")
	ErrNoObservations       = errors.New("no observations")
	ErrDuplicateDate        = errors.New("duplicate observation date")
	ErrUnknownColumn        = errors.New("required column not found")
	ErrInvalidDate          = errors.New("invalid date")
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrBeginAfterEnd        = errors.New("invalid window; begin after end date")
)

// MissingFieldError reports a required financial statement field that is zero
// (and therefore treated as unavailable) for a given report
type MissingFieldError struct {
	Field      string
	ReportDate time.Time
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s is zero for report %s", ErrMissingFinancialData, e.Field, e.ReportDate.Format(DateLayout))
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingFinancialData
}
