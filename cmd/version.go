package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X github.com/abhisek/cadence/cmd.version=...".
var version = "(devel)"

// buildVersion prefers the linker-set version, then the module version
// recorded by `go install`, then the VCS revision.
func buildVersion() (v, revision string) {
	v = version
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, ""
	}
	if v == "(devel)" && info.Main.Version != "" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			revision = s.Value[:12]
		}
	}
	return v, revision
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cadence version",
	Run: func(cmd *cobra.Command, args []string) {
		v, rev := buildVersion()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(v)
			return
		}
		fmt.Printf("cadence %s", v)
		if rev != "" {
			fmt.Printf(" (%s)", rev)
		}
		fmt.Printf(" %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version")
}
