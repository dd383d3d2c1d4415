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
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	CompactDateLayout = "20060102"
)

// NormalizeDate truncates t to midnight UTC of its calendar day. Every date that
// enters the data or risk packages passes through here so that windows compare
// like with like regardless of the source's timezone or time of day.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts 2006-01-02, 20060102 and RFC3339 timestamps
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, CompactDateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Window is a closed date range [Begin, End]; a zero bound is open
type Window struct {
	Begin time.Time
	End   time.Time
}

// NewWindow normalizes both bounds and checks ordering
func NewWindow(begin, end time.Time) (Window, error) {
	w := Window{
		Begin: NormalizeDate(begin),
		End:   NormalizeDate(end),
	}
	if err := w.Valid(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// TrailingYear returns the window [asOf - 1 year, asOf]
func TrailingYear(asOf time.Time) Window {
	asOf = NormalizeDate(asOf)
	return Window{
		Begin: asOf.AddDate(-1, 0, 0),
		End:   asOf,
	}
}

// Valid returns ErrBeginAfterEnd if both bounds are set and out of order
func (w Window) Valid() error {
	if !w.Begin.IsZero() && !w.End.IsZero() && w.Begin.After(w.End) {
		return ErrBeginAfterEnd
	}
	return nil
}

// Contains reports whether the normalized date lies inside the window. Both
// bounds are inclusive.
func (w Window) Contains(t time.Time) bool {
	t = NormalizeDate(t)
	if !w.Begin.IsZero() && t.Before(w.Begin) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

func (w Window) String() string {
	begin, end := "-inf", "+inf"
	if !w.Begin.IsZero() {
		begin = w.Begin.Format(DateLayout)
	}
	if !w.End.IsZero() {
		end = w.End.Format(DateLayout)
	}
	return fmt.Sprintf("[%s, %s]", begin, end)
}
