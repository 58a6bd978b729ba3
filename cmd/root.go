package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/logutils"
	"github.com/spf13/cobra"
)

var logLevel string
var logFilter *logutils.LevelFilter

var rootCmd = &cobra.Command{
	Use:   "canvasfit",
	Short: "Clamp canvas dimensions to a maximum extent",
	Long: `canvasfit computes canvas dimensions whose largest side equals a fixed
maximum extent while keeping the aspect ratio, and renders images onto such canvases.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFilter == nil {
			return nil
		}
		level := logutils.LogLevel(strings.ToUpper(logLevel))
		for _, l := range logFilter.Levels {
			if l == level {
				logFilter.SetMinLevel(level)
				return nil
			}
		}
		return fmt.Errorf("unknown log level, level=%s", logLevel)
	},
}

// Execute runs the root command. filter, if set, is adjusted by --log-level.
func Execute(filter *logutils.LevelFilter) {
	logFilter = filter
	if err := rootCmd.Execute(); err != nil {
		log.Println("[ERROR]", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "INFO", "Minimum log level (DEBUG, INFO, WARN, ERROR)")
}
