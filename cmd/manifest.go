package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/blead/canvasfit/pkg/canvas"
	"github.com/blead/canvasfit/pkg/encoding"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

var manifestMax int
var manifestFormat string
var manifestIndent int
var manifestOutput string

var manifestCmd = &cobra.Command{
	Use:   "manifest [file]",
	Short: "Compute canvas dimensions for every entry of a JSON manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := encoding.ParseReportFormat(manifestFormat)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("manifest: read error, src=%s, %w", args[0], err)
		}
		entries, err := encoding.ReadManifest(data)
		if err != nil {
			return err
		}

		var errs *multierror.Error
		var results []*encoding.Result
		for _, e := range entries {
			dims, err := canvas.ClampWithin(e.Width, e.Height, manifestMax)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("manifest: name=%s, %w", e.Name, err))
				continue
			}
			results = append(results, &encoding.Result{Source: e.Name, Width: e.Width, Height: e.Height, Canvas: dims})
		}
		log.Printf("[INFO] Clamped %d of %d manifest entries\n", len(results), len(entries))

		output, err := encoding.MarshalReport(results, format, manifestIndent)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, manifestOutput, output); err != nil {
			return err
		}

		return errs.ErrorOrNil()
	},
}

func writeOutput(cmd *cobra.Command, dest string, output []byte) error {
	if dest == "" || dest == "-" {
		_, err := cmd.OutOrStdout().Write(output)
		return err
	}
	err := os.WriteFile(dest, output, 0666)
	if err != nil {
		return fmt.Errorf("writeOutput: dest write error, dest=%s, %w", dest, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().IntVarP(&manifestMax, "max", "m", canvas.MaxExtent, "Maximum extent of the larger side")
	manifestCmd.Flags().StringVarP(&manifestFormat, "format", "f", "json", "Report format (json, msgpack)")
	manifestCmd.Flags().IntVarP(&manifestIndent, "indent", "i", 0, "JSON indentation")
	manifestCmd.Flags().StringVarP(&manifestOutput, "output", "o", "", "Write the report to a file instead of stdout")
}
