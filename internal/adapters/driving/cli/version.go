package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		info, _ := debug.ReadBuildInfo()
		cmd.Println(versionLine(version, info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionLine appends the VCS commit recorded at build time, if any.
func versionLine(v string, info *debug.BuildInfo) string {
	line := "briefly version " + v
	if info == nil {
		return line
	}
	var revision string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return line
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return line + " (" + revision + ")"
}
