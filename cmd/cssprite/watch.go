package main

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Generate sprites and regenerate sets as they change",
	Long: `Run a full build, then watch the source directory. A change inside a
sprite set regenerates only that set. Equivalent to generate --watch.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return k.Set("watch", true)
	},
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(watchCmd.Flags())
}
