package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Record a review and schedule the next one",
	Example: `  cadence review Math/Algebra --difficulty easy
  cadence review Math/Algebra --performance 0.35`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		obs, err := observationFromFlags(cmd)
		if err != nil {
			return err
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		item, ev, err := d.service.Review(cmd.Context(), args[0], obs)
		if errors.Is(err, spacedrep.ErrItemNotFound) {
			return fmt.Errorf("%s: %w (add it first, or disable scheduler.strict)", args[0], err)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s (performance %.2f)\n", item.ID, ev.Difficulty, ev.Performance)
		fmt.Printf("  stage      %s → %s\n", ev.StageBefore, ev.StageAfter)
		fmt.Printf("  interval   %.2f days\n", ev.IntervalApplied)
		fmt.Printf("  half-life  %s (%s)\n", optDays(ev.HalfLife), ev.HalfLifeSource)
		fmt.Printf("  recall     %s\n", optPercent(ev.RecallProbability))
		fmt.Printf("  next       %s\n", item.NextReview.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func observationFromFlags(cmd *cobra.Command) (spacedrep.Observation, error) {
	diff, _ := cmd.Flags().GetString("difficulty")
	perfSet := cmd.Flags().Changed("performance")
	switch {
	case diff != "" && perfSet:
		return spacedrep.Observation{}, fmt.Errorf("use either --difficulty or --performance, not both")
	case diff != "":
		d, err := spacedrep.ParseDifficulty(diff)
		if err != nil {
			return spacedrep.Observation{}, err
		}
		return spacedrep.Label(d), nil
	case perfSet:
		p, _ := cmd.Flags().GetFloat64("performance")
		return spacedrep.Score(p), nil
	}
	return spacedrep.Observation{}, fmt.Errorf("one of --difficulty or --performance is required")
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List topics due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now()
		if s, _ := cmd.Flags().GetString("as-of"); s != "" {
			t, err := time.ParseInLocation("2006-01-02", s, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD): %w", s, err)
			}
			asOf = t
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		due, err := d.service.Due(cmd.Context(), asOf)
		if err != nil {
			return err
		}
		if asJSON {
			ids := make([]string, len(due))
			for i, it := range due {
				ids[i] = it.ID
			}
			return json.NewEncoder(os.Stdout).Encode(ids)
		}
		if len(due) == 0 {
			fmt.Printf("Nothing due on %s.\n", formatDate(asOf))
			return nil
		}

		fmt.Printf("%-40s  %-10s  %8s  %s\n", "Topic", "Due", "Overdue", "Stage")
		fmt.Println(strings.Repeat("─", 76))
		for _, it := range due {
			fmt.Printf("%-40s  %-10s  %7.1fd  %s\n",
				it.ID, formatDate(it.NextReview), it.OverdueDays(asOf), it.Stage)
		}
		fmt.Printf("\n%d topic(s) due.\n", len(due))
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show upcoming reviews grouped by horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ov, err := d.service.Overview(cmd.Context())
		if err != nil {
			return err
		}
		if ov.Total == 0 {
			fmt.Println("No active topics.")
			return nil
		}

		heading := color.New(color.FgCyan, color.Bold)
		for _, name := range spacedrep.BucketOrder {
			entries := ov.Buckets[name]
			heading.Printf("%s (%d)\n", name, len(entries))
			for _, e := range entries {
				fmt.Printf("  %-40s  %-10s  %-12s  %d review(s)\n",
					e.ID, formatDate(e.NextReview), e.Stage, e.Reviews)
			}
		}

		fmt.Println()
		heading.Println("Stages")
		for _, s := range (spacedrep.StageTable{}).Stages() {
			share := ov.StageShare(s)
			fmt.Printf("  %-12s  %3d  %-20s %3.0f%%\n",
				s, ov.Stages[s], strings.Repeat("█", int(share*20+0.5)), share*100)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringP("difficulty", "d", "", "Review outcome: hard, normal or easy")
	reviewCmd.Flags().Float64P("performance", "p", 0, "Review score in [0, 1]")
	dueCmd.Flags().String("as-of", "", "Date to check, YYYY-MM-DD (default today)")
	dueCmd.Flags().Bool("json", false, "Print the due topic IDs as a JSON array")
}
