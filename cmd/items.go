package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/topictree"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a topic and any missing parent topics",
	Example: `  cadence add "Math/Algebra/Linear Equations"
  cadence add History/Rome --status disabled`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		statusFlag, _ := cmd.Flags().GetString("status")
		status, err := spacedrep.ParseStatus(statusFlag)
		if err != nil {
			return err
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		created, err := d.service.AddTopic(cmd.Context(), args[0], status)
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Printf("%s already exists.\n", args[0])
			return nil
		}
		for _, it := range created {
			fmt.Printf("Added %s (%s, due %s)\n", it.ID, it.Status, formatDate(it.NextReview))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:       "status <id> <active|disabled|completed>",
	Short:     "Change whether a topic is scheduled",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"active", "disabled", "completed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := spacedrep.ParseStatus(args[1])
		if err != nil {
			return err
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		it, err := d.service.SetStatus(cmd.Context(), args[0], status)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Printf("%s is now %s.\n", it.ID, it.Status)
		return nil
	},
}

var propagateCmd = &cobra.Command{
	Use:   "propagate <parent>",
	Short: "Apply a topic's latest performance to its direct children",
	Long: "Children of a weak parent (performance below 0.5) have their performance\n" +
		"scaled by 0.9; children of a strong parent are scaled by 1.1, capped at 1.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		adjusted, err := d.service.Propagate(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if len(adjusted) == 0 {
			fmt.Printf("%s has no children.\n", args[0])
			return nil
		}
		for _, it := range adjusted {
			fmt.Printf("%-40s  performance %.3f\n", it.ID, it.Performance)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Show the topic hierarchy",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		tree, err := d.service.Tree(cmd.Context())
		if err != nil {
			return err
		}
		if tree.Len() == 0 {
			fmt.Println("No topics yet. Add one with: cadence add <path>")
			return nil
		}

		if len(args) == 1 {
			printRelated(tree, args[0])
			return nil
		}

		now := time.Now()
		tree.Walk(func(it *spacedrep.Item, depth int) bool {
			if !all && it.Status != spacedrep.StatusActive {
				return false
			}
			fmt.Printf("%s%s  %s\n",
				strings.Repeat("  ", depth),
				topictree.Name(it.ID),
				describeItem(it, now))
			return true
		})
		return nil
	},
}

func printRelated(tree *topictree.Tree, path string) {
	it, ok := tree.Get(path)
	if !ok {
		fmt.Printf("%s: %v\n", path, spacedrep.ErrItemNotFound)
		return
	}
	now := time.Now()
	fmt.Printf("%s  %s\n\n", it.ID, describeItem(it, now))
	related := tree.Related(path)
	if len(related) == 0 {
		fmt.Println("No related topics.")
		return
	}
	fmt.Println("Related:")
	for _, r := range related {
		fmt.Printf("  %-40s  %s\n", r.ID, describeItem(r, now))
	}
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the review history of a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		it, err := d.service.Item(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(it)
		}

		fmt.Printf("%s  %s\n\n", it.ID, describeItem(it, time.Now()))
		if len(it.History) == 0 {
			fmt.Println("Never reviewed.")
			return nil
		}
		fmt.Printf("%-16s  %-7s  %5s  %8s  %9s  %6s  %-9s  %s\n",
			"Date", "Result", "Perf", "Interval", "Half-life", "Recall", "Source", "Stage")
		fmt.Println(strings.Repeat("─", 96))
		for _, ev := range it.History {
			fmt.Printf("%-16s  %-7s  %5.2f  %7.1fd  %9s  %6s  %-9s  %s → %s\n",
				ev.Date.Local().Format("2006-01-02 15:04"),
				ev.Difficulty,
				ev.Performance,
				ev.IntervalApplied,
				optDays(ev.HalfLife),
				optPercent(ev.RecallProbability),
				ev.HalfLifeSource,
				ev.StageBefore, ev.StageAfter)
		}
		return nil
	},
}

func describeItem(it *spacedrep.Item, now time.Time) string {
	var b strings.Builder
	b.WriteString(it.Stage.String())
	if it.Status != spacedrep.StatusActive {
		b.WriteString(", " + string(it.Status))
		return color.New(color.FgHiBlack).Sprint(b.String())
	}
	days := it.DaysUntilReview(now)
	switch {
	case it.IsDue(now):
		b.WriteString(", " + color.New(color.FgYellow, color.Bold).Sprint("due"))
	case days == 0:
		b.WriteString(", due tomorrow")
	default:
		fmt.Fprintf(&b, ", in %dd", days)
	}
	return b.String()
}

func formatDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func optDays(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fd", *v)
}

func optPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func init() {
	addCmd.Flags().String("status", string(spacedrep.StatusActive), "Initial status: active, disabled or completed")
	treeCmd.Flags().Bool("all", false, "Include disabled and completed topics")
	historyCmd.Flags().Bool("json", false, "Print the item and its history as JSON")
}
