package diagnostics

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the run-level structured logger (ambient
// logging concern). It is separate from Reporter: Reporter writes the
// user-facing pass/fail output on stdout; this logs phase detail on
// stderr at DEBUG when TCKERNEL_LOG is set, INFO otherwise.
func NewLogger(name string) hclog.Logger {
	level := hclog.Info
	if os.Getenv("TCKERNEL_LOG") != "" {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: level,
		Color: hclog.AutoColor,
	})
}
