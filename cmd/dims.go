package cmd

import (
	"fmt"
	"strconv"

	"github.com/blead/canvasfit/pkg/canvas"
	"github.com/spf13/cobra"
)

var dimsMax int
var dimsStrict bool

var dimsCmd = &cobra.Command{
	Use:   "dims ([width] [height] | [WxH])",
	Short: "Print canvas dimensions for a width and height",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if dimsMax <= 0 {
			return fmt.Errorf("dims: non-positive max extent, max=%d, %w", dimsMax, canvas.ErrInvalidDimensions)
		}

		width, height, err := parseDimsArgs(args)
		if err != nil {
			return err
		}

		var dims canvas.Dimensions
		if dimsStrict {
			dims, err = canvas.ClampWithin(width, height, dimsMax)
			if err != nil {
				return err
			}
		} else {
			dims = canvas.MaxDimensionsWithin(width, height, dimsMax)
		}

		fmt.Fprintln(cmd.OutOrStdout(), dims)
		return nil
	},
}

func parseDimsArgs(args []string) (float64, float64, error) {
	if len(args) == 1 {
		d, err := canvas.ParseDimensions(args[0])
		if err != nil {
			return 0, 0, err
		}
		return float64(d.Width), float64(d.Height), nil
	}

	width, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("dims: unable to parse width, width=%s, %w", args[0], err)
	}
	height, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("dims: unable to parse height, height=%s, %w", args[1], err)
	}
	return width, height, nil
}

func init() {
	rootCmd.AddCommand(dimsCmd)
	dimsCmd.Flags().IntVarP(&dimsMax, "max", "m", canvas.MaxExtent, "Maximum extent of the larger side")
	dimsCmd.Flags().BoolVarP(&dimsStrict, "strict", "s", false, "Reject negative, non-finite and empty dimensions")
}
