package cmd

import (
	"fmt"
	"os"

	"cloud-assets/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cloud-assets",
	Short: "Cloud asset storage service",
	Long: `cloud-assets keeps site asset files in an S3-compatible bucket.
It uploads, reads, renames and deletes files, issues temporary links
and checks that the bucket mirrors the local assets folder.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with the development config (ISO8601 timestamps) for CLI users
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
