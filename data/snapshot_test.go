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


package data_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-risk/data"
)

func report(year int) data.FinancialSnapshot {
	return data.FinancialSnapshot{
		SecurityName:               "SYNTH",
		ReportDate:                 day(year, 12, 31),
		TotalCurrentAssets:         500,
		TotalCurrentLiabilities:    300,
		TotalNoncurrentLiabilities: 100,
		UnassignedProfit:           100,
		SurplusReserve:             50,
		OperatingProfit:            100,
		TotalAssets:                1000,
		TotalLiabilities:           400,
		TotalEquity:                600,
		TotalOperatingIncome:       900,
	}
}

var _ = Describe("Financial snapshots", func() {
	It("should derive working capital and retained earnings", func() {
		snap := report(2022)
		Expect(snap.WorkingCapital()).To(Equal(200.0))
		Expect(snap.RetainedEarnings()).To(Equal(150.0))
		Expect(snap.FiscalYear()).To(Equal(2022))
	})

	Describe("when validating", func() {
		It("should accept a complete report", func() {
			Expect(report(2022).Validate()).To(Succeed())
		})

		It("should not require non-current liabilities", func() {
			snap := report(2022)
			snap.TotalNoncurrentLiabilities = 0
			Expect(snap.Validate()).To(Succeed())
		})

		It("should name the first missing field", func() {
			snap := report(2022)
			snap.TotalEquity = 0
			snap.OperatingProfit = 0

			err := snap.Validate()
			Expect(err).To(MatchError(data.ErrMissingFinancialData))

			var missing *data.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Field).To(Equal("OPERATE_PROFIT"))
			Expect(missing.ReportDate).To(Equal(day(2022, 12, 31)))
			Expect(err.Error()).To(ContainSubstring("2022-12-31"))
		})
	})

	Describe("when ordering", func() {
		It("should put the latest report first", func() {
			snaps, err := data.NewSnapshots([]data.FinancialSnapshot{report(2020), report(2022), report(2021)})
			Expect(err).To(BeNil())
			Expect(snaps.Len()).To(Equal(3))

			latest, err := snaps.Latest()
			Expect(err).To(BeNil())
			Expect(latest.FiscalYear()).To(Equal(2022))
			Expect(snaps.At(2).FiscalYear()).To(Equal(2020))
		})

		It("should limit the most recent reports", func() {
			snaps, err := data.NewSnapshots([]data.FinancialSnapshot{report(2020), report(2022), report(2021)})
			Expect(err).To(BeNil())

			recent := snaps.Recent(2)
			Expect(recent).To(HaveLen(2))
			Expect(recent[1].FiscalYear()).To(Equal(2021))
			Expect(snaps.Recent(10)).To(HaveLen(3))
		})

		It("should reject two reports for the same day", func() {
			dup := report(2022)
			dup.ReportDate = dup.ReportDate.Add(8 * time.Hour)
			_, err := data.NewSnapshots([]data.FinancialSnapshot{report(2022), dup})
			Expect(err).To(MatchError(data.ErrDuplicateDate))
		})

		It("should reject a report without a date", func() {
			undated := report(2022)
			undated.ReportDate = time.Time{}
			_, err := data.NewSnapshots([]data.FinancialSnapshot{undated})
			Expect(err).To(MatchError(data.ErrInvalidDate))
		})

		It("should have no latest report when empty", func() {
			snaps, err := data.NewSnapshots(nil)
			Expect(err).To(BeNil())
			_, err = snaps.Latest()
			Expect(err).To(MatchError(data.ErrNoObservations))
		})
	})
})
