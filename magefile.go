//go:build mage

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


package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName  = "pvrisk"
	packageName = "."
	modulePath  = "github.com/penny-vault/pv-risk"
	coverFile   = "coverage.out"
)

var ldflags = "-X " + modulePath + "/common.commitHash=$COMMIT_HASH -X " + modulePath + "/common.buildDate=$BUILD_DATE"

// allow user to override go executable by running as GOEXE=xxx mage ... on unix-like systems
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

// Build the pvrisk binary with version information
func Build() error {
	fmt.Println("Building...")
	return sh.RunWith(versionEnv(), goexe, args("build", "-o", binaryName, "-ldflags", ldflags, buildFlags(), packageName)...)
}

// Install pvrisk into GOBIN
func Install() error {
	return sh.RunWith(versionEnv(), goexe, args("install", "-ldflags", ldflags, buildFlags(), packageName)...)
}

// Clean removes build and coverage artifacts
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(binaryName)
	os.RemoveAll(coverFile)
}

// Check runs the formatters, vet and the race enabled test suites
func Check() {
	mg.Deps(Fmt, Vet)
	mg.Deps(TestRace)
}

// Test runs every ginkgo suite
func Test() error {
	fmt.Println("Go Test")
	return quiet(goexe, args("test", "./...", buildFlags())...)
}

// TestRace runs the suites with the race detector; the Monte Carlo workers are
// the only concurrent code
func TestRace() error {
	fmt.Println("Go Test Race")
	return quiet(goexe, args("test", "-race", "./...", buildFlags())...)
}

// Cover writes a coverage profile for all packages and opens the HTML report
func Cover() error {
	fmt.Println("Generate Test Coverage HTML")
	if err := sh.Run(goexe, "test", "-coverprofile="+coverFile, "-covermode=count", "./..."); err != nil {
		return err
	}
	return sh.Run(goexe, "tool", "cover", "-html="+coverFile)
}

// Fmt fails when any file is not gofmt'ed
func Fmt() error {
	fmt.Println("Go Format")

	// gofmt doesn't exit with non-zero when it finds unformatted code
	out, err := sh.Output("gofmt", "-l", "cmd", "common", "data", "risk", "main.go")
	if err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	if out != "" {
		fmt.Println("The following files are not gofmt'ed:")
		fmt.Println(out)
		return errors.New("improperly formatted go files")
	}
	return nil
}

// Vet runs go vet
func Vet() error {
	fmt.Println("Go Vet")

	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %v", err)
	}
	return nil
}

// Helpers

func buildFlags() []string {
	if runtime.GOOS == "windows" {
		return []string{"-buildmode", "exe"}
	}
	return nil
}

func versionEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": strings.TrimSpace(hash),
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

// quiet only prints the command output when it fails, unless mage runs verbose
func quiet(cmd string, cmdArgs ...string) error {
	if mg.Verbose() {
		return sh.RunV(cmd, cmdArgs...)
	}
	output, err := sh.Output(cmd, cmdArgs...)
	if err != nil {
		fmt.Fprint(os.Stderr, output)
	}
	return err
}

func args(v ...interface{}) []string {
	var res []string
	for _, arg := range v {
		switch v := arg.(type) {
		case string:
			if v != "" {
				res = append(res, v)
			}
		case []string:
			res = append(res, v...)
		default:
			panic("invalid type")
		}
	}
	return res
}
