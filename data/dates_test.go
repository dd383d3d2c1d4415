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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-risk/data"
)

var _ = Describe("Dates", func() {
	DescribeTable("parsing provider dates",
		func(s string, expected time.Time) {
			dt, err := data.ParseDate(s)
			Expect(err).To(BeNil())
			Expect(dt).To(Equal(expected))
		},
		Entry("ISO date", "2022-12-31", day(2022, 12, 31)),
		Entry("compact date", "20221231", day(2022, 12, 31)),
		Entry("date and time", "2022-12-31 00:00:00", day(2022, 12, 31)),
		Entry("RFC3339", "2022-12-31T15:04:05+08:00", day(2022, 12, 31)),
		Entry("slashes", "2022/12/31", day(2022, 12, 31)),
		Entry("surrounding space", " 2022-12-31 ", day(2022, 12, 31)),
	)

	It("should reject garbage", func() {
		_, err := data.ParseDate("31st of December")
		Expect(err).To(MatchError(data.ErrInvalidDate))
	})

	It("should normalize to midnight UTC", func() {
		ny := time.FixedZone("EST", -5*60*60)
		Expect(data.NormalizeDate(time.Date(2022, 3, 4, 23, 30, 0, 0, ny))).To(Equal(day(2022, 3, 4)))
		Expect(data.NormalizeDate(time.Time{}).IsZero()).To(BeTrue())
	})

	Describe("when using windows", func() {
		It("should cover the trailing year with both ends", func() {
			w := data.TrailingYear(day(2022, 12, 31))
			Expect(w.Begin).To(Equal(day(2021, 12, 31)))
			Expect(w.End).To(Equal(day(2022, 12, 31)))

			Expect(w.Contains(day(2021, 12, 30))).To(BeFalse())
			Expect(w.Contains(day(2021, 12, 31))).To(BeTrue())
			Expect(w.Contains(day(2022, 12, 31).Add(13 * time.Hour))).To(BeTrue())
			Expect(w.Contains(day(2023, 1, 1))).To(BeFalse())
		})

		It("should treat zero bounds as open", func() {
			w := data.Window{End: day(2022, 1, 1)}
			Expect(w.Contains(day(1900, 1, 1))).To(BeTrue())
			Expect(w.Contains(day(2022, 1, 2))).To(BeFalse())
			Expect(w.String()).To(Equal("[-inf, 2022-01-01]"))
		})

		It("should reject reversed bounds", func() {
			_, err := data.NewWindow(day(2022, 2, 1), day(2022, 1, 1))
			Expect(err).To(MatchError(data.ErrBeginAfterEnd))
		})
	})
})
