package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/abhisek/cadence/internal/fuzzy"
	"github.com/abhisek/cadence/internal/halflife"
	"github.com/spf13/cobra"
)

var fuzzyCmd = &cobra.Command{
	Use:   "fuzzy <days-since-review>",
	Short: "Trace the fuzzy interval selector for a gap in days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid day count %q: %w", args[0], err)
		}

		diag := fuzzy.Default().Diagnose(days)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return json.NewEncoder(os.Stdout).Encode(diag)
		}

		fmt.Printf("days since review: %g\n\nmemberships\n", diag.Days)
		printDegrees(diag.Memberships)
		fmt.Println("\nrule strengths")
		printDegrees(diag.Strengths)
		if diag.Defined {
			fmt.Printf("\ninterval: %.3f days\n", diag.Interval)
		} else {
			fmt.Println("\ninterval: undefined (no rule fired; the stage interval is used)")
		}
		return nil
	},
}

func printDegrees(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %.3f\n", n, m[n])
	}
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Export (performance, interval, half-life) training samples",
	Long: "Exports one sample per stored review that carries a half-life, for\n" +
		"fitting the regression predictor or an ONNX model offline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		samples, err := d.service.Samples(cmd.Context())
		if err != nil {
			return err
		}
		if samples == nil {
			samples = []halflife.Sample{}
		}

		var w io.Writer = os.Stdout
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
			defer fmt.Fprintf(os.Stderr, "Wrote %d sample(s) to %s\n", len(samples), out)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(samples)
	},
}

func init() {
	fuzzyCmd.Flags().Bool("json", false, "Print the trace as JSON")
	samplesCmd.Flags().StringP("out", "o", "", "Write samples to a file instead of stdout")
}
