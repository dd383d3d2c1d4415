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

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

const ProgramName = "pvrisk"

var (
	// commitHash and buildDate are set by mage through -ldflags
	commitHash string
	buildDate  string
)

// Version is a SemVer 2.0.0 build version
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}

	s += "-" + v.Suffix
	if commitHash != "" {
		s += "+" + strings.ToLower(commitHash)
	}
	return s
}

// DependencyList returns the module dependencies of the running binary as
// sorted path="version" strings
func DependencyList() []string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	deps := make([]string, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}
	sort.Strings(deps)

	return deps
}

// BuildVersionString is what `pvrisk version` prints
func BuildVersionString(withDeps bool) string {
	date := buildDate
	if date == "" {
		date = "unknown"
	}

	out := fmt.Sprintf("%s v%s %s/%s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		ProgramName, CurrentVersion, runtime.GOOS, runtime.GOARCH, date, commitHash, runtime.Version())

	if withDeps {
		out += "\n\nDependencies:\n\n" + strings.Join(DependencyList(), "\n")
	}

	return out
}
