package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/cadence/internal/halflife"
	"github.com/abhisek/cadence/internal/llm"
	"github.com/abhisek/cadence/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect and test the LLM half-life predictor",
}

var llmCallsCmd = &cobra.Command{
	Use:   "calls",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		calls, err := d.store.CallRepo().Calls(cmd.Context(), store.CallFilter{
			Limit:   limit,
			Purpose: purpose,
			Failed:  failed,
		})
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		bad := color.New(color.FgRed, color.Bold)
		fmt.Printf("%5s  %-16s  %-10s  %-26s  %11s  %7s\n",
			"ID", "When", "Purpose", "Model", "Tokens", "Latency")
		for _, c := range calls {
			line := fmt.Sprintf("%5d  %-16s  %-10s  %-26s  %5d/%-5d  %7s",
				c.ID,
				c.Timestamp.Local().Format("2006-01-02 15:04"),
				clip(c.Purpose, 10),
				clip(c.Model, 26),
				c.InputTokens, c.OutputTokens,
				c.Latency.Round(time.Millisecond))
			if !c.OK() {
				line += "  " + bad.Sprint("failed")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("call id must be a number: %q", args[0])
		}

		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		c, ok, err := d.store.CallRepo().Call(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no LLM call with id %d", id)
		}

		heading := color.New(color.FgCyan, color.Bold)
		fmt.Printf("Call %d at %s\n", c.ID, c.Timestamp.Local().Format(time.DateTime))
		fmt.Printf("  %s %s for %q\n", c.Vendor, c.Model, c.Purpose)
		fmt.Printf("  %d input + %d output tokens in %s", c.InputTokens, c.OutputTokens, c.Latency)
		if p, ok := llm.PriceOf(c.Model); ok {
			fmt.Printf(", about %s", usd(p.Cost(llm.Usage{InputTokens: c.InputTokens, OutputTokens: c.OutputTokens})))
		}
		fmt.Println()
		if !c.OK() {
			fmt.Printf("  %s %s\n", color.New(color.FgRed).Sprint("error:"), c.Err)
		}

		fmt.Println()
		heading.Println("Request")
		fmt.Println(orNone(c.Request))
		heading.Println("Reply")
		fmt.Println(orNone(c.Response))
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		repo := d.store.CallRepo()
		purposes, err := repo.Usage(ctx, store.ByPurpose)
		if err != nil {
			return err
		}
		if len(purposes) == 0 {
			fmt.Println("No LLM usage recorded.")
			return nil
		}

		heading := color.New(color.FgCyan, color.Bold)
		heading.Println("By purpose")
		fmt.Printf("  %-14s  %6s  %6s  %9s  %9s  %8s\n", "Purpose", "Calls", "Failed", "Input", "Output", "Avg")
		for _, u := range purposes {
			fmt.Printf("  %-14s  %6d  %6d  %9d  %9d  %8s\n",
				clip(u.Key, 14), u.Calls, u.Failed, u.InputTokens, u.OutputTokens, u.AvgLatency.Round(time.Millisecond))
		}

		models, err := repo.Usage(ctx, store.ByModel)
		if err != nil {
			return err
		}
		fmt.Println()
		heading.Println("By model")
		var total float64
		var unpriced []string
		for _, u := range models {
			cost := "?"
			if p, ok := llm.PriceOf(u.Key); ok {
				c := p.Cost(u.Tokens())
				total += c
				cost = usd(c)
			} else {
				unpriced = append(unpriced, u.Key)
			}
			fmt.Printf("  %-30s  %6d calls  %9d tokens  %9s\n",
				clip(u.Key, 30), u.Calls, u.Tokens().Total(), cost)
		}
		fmt.Printf("  %-30s  %35s\n", "total", usd(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo price known for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

var llmPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ask the configured model for one half-life estimate",
	Long: "Sends a single estimate request with the llm settings from the config\n" +
		"and prints the answer. The call is recorded like any other.",
	RunE: func(cmd *cobra.Command, args []string) error {
		performance, _ := cmd.Flags().GetFloat64("performance")
		interval, _ := cmd.Flags().GetFloat64("interval")

		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		settings, ok, err := d.cfg.LLM.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no LLM configured; set llm.vendor or a vendor API key")
		}
		provider, err := llm.Open(cmd.Context(), settings,
			llm.WithCallLog(d.store.CallRepo()),
			llm.WithLogger(d.logger))
		if err != nil {
			return err
		}

		start := time.Now()
		h, err := halflife.NewLLM(provider).Predict(cmd.Context(), performance, interval)
		if err != nil {
			return fmt.Errorf("%s: %w", provider.ModelID(), err)
		}
		fmt.Printf("%s estimates a half-life of %.2f days (performance %.2f, interval %gd) in %s.\n",
			provider.ModelID(), h, performance, interval, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}

func usd(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func init() {
	llmCallsCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmCallsCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose, e.g. "+halflife.LLMPurpose)
	llmCallsCmd.Flags().Bool("failed", false, "Only failed calls")

	llmPingCmd.Flags().Float64("performance", 0.8, "Performance to ask about, 0 to 1")
	llmPingCmd.Flags().Float64("interval", 3, "Interval in days to ask about")

	llmCmd.AddCommand(llmCallsCmd, llmShowCmd, llmUsageCmd, llmPingCmd)
}
