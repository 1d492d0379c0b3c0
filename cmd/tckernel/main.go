// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"tckernel/internal/diagnostics"
	"tckernel/internal/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tckernel <export-file>")
		os.Exit(1)
	}
	os.Exit(run(os.Args[1]))
}

// run parses the export file, type-checks every declaration it produces,
// and reports the outcome. A kernel invariant violation surfaces as a
// panic from deep within internal/kernel; it is recovered here and
// treated the same as any other fatal abort.
func run(path string) (code int) {
	logger := diagnostics.NewLogger("tckernel")
	reporter := diagnostics.NewReporter(os.Stdout)

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			logger.Error("kernel invariant violation", "error", err)
			reporter.Fatal(0, "%s", err)
			code = 1
		}
	}()

	source, err := os.ReadFile(path)
	if err != nil {
		reporter.Fatal(0, "failed to read %s: %s", path, err)
		return 1
	}

	logger.Debug("parsing export file", "path", path)
	env, err := parser.Parse(string(source))
	if err != nil {
		reporter.Fatal(0, "%s", err)
		return 1
	}

	logger.Debug("checking declarations")
	mismatches := env.CheckAll()
	if len(mismatches) == 0 {
		reporter.Success()
		return 0
	}

	for _, m := range mismatches {
		reporter.Mismatch(env.NameString(m.Decl), m.Error())
	}
	color.Red("%d declaration(s) failed to check", len(mismatches))
	return 1
}
