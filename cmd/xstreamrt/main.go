// Command xstreamrt is a small CLI harness over the pool/scheduler
// core: it builds pools and a priority scheduler from a YAML config
// and drives either a fixed demo scenario or a long-running serve
// loop, grounded on oriys-nova/cmd/nova/main.go's cobra root-command
// wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xstreamrt/xstreamrt/internal/logging"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "xstreamrt",
		Short: "xstreamrt - work-unit pool and priority scheduler runtime",
		Long:  "A CLI harness for the xstreamrt pool/scheduler core: build pools, stack a priority scheduler, and drive it.",
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file (optional, defaults apply)")

	root.AddCommand(demoCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		logging.Op().Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
