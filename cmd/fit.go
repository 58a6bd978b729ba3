package cmd

import (
	"log"

	"github.com/blead/canvasfit/pkg/canvas"
	"github.com/blead/canvasfit/pkg/encoding"
	"github.com/blead/canvasfit/pkg/fit"
	"github.com/spf13/cobra"
)

var fitMax int
var fitConcurrency int
var fitShrinkOnly bool
var fitFilter string
var fitFormat string
var fitQuality int
var fitRetry int
var fitReport string

var fitCmd = &cobra.Command{
	Use:   "fit [src...] [dest]",
	Short: "Render images from src onto clamped canvases at dest",
	Long: `Render every image from src onto a canvas whose largest side equals --max.
A src is an image file, a directory (walked recursively) or an http(s) URL.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := fit.ParseFilter(fitFilter)
		if err != nil {
			return err
		}

		config := fit.FitterConfig{
			SrcPaths:    args[:len(args)-1],
			DestPath:    args[len(args)-1],
			MaxExtent:   fitMax,
			Concurrency: fitConcurrency,
			ShrinkOnly:  fitShrinkOnly,
			Filter:      filter,
			Format:      fitFormat,
			Quality:     fitQuality,
			RetryMax:    fitRetry,
		}

		fitter, err := fit.NewFitter(&config)
		if err != nil {
			return err
		}

		results, fitErr := fitter.FitImages()
		if fitReport != "" {
			output, err := encoding.MarshalJSON(results, 2)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, fitReport, output); err != nil {
				return err
			}
			log.Printf("[INFO] Report written, dest=%s\n", fitReport)
		}

		return fitErr
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().IntVarP(&fitMax, "max", "m", canvas.MaxExtent, "Maximum extent of the larger side")
	fitCmd.Flags().IntVarP(&fitConcurrency, "concurrency", "c", 5, "Maximum number of concurrent image processing")
	fitCmd.Flags().BoolVarP(&fitShrinkOnly, "shrink-only", "s", false, "Keep images that already fit at their size")
	fitCmd.Flags().StringVarP(&fitFilter, "filter", "f", "lanczos", "Resample filter (nearest, linear, catmullrom, lanczos, ...)")
	fitCmd.Flags().StringVarP(&fitFormat, "format", "t", "", "Output image format (png, jpeg, gif, tiff, bmp); keeps the source format if empty")
	fitCmd.Flags().IntVarP(&fitQuality, "quality", "q", 95, "JPEG quality")
	fitCmd.Flags().IntVarP(&fitRetry, "retry", "r", 4, "Maximum retries of URL downloads")
	fitCmd.Flags().StringVar(&fitReport, "report", "", "Write a JSON report of the fitted images to a file, or - for stdout")
}
