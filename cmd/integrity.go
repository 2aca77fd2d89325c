package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud-assets/feature/integrity"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the bucket",
	Long:  `Checks that the bucket container is reachable and holds every file of the local assets folder.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// containerCmd represents the integrity container command
var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Check the container is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// mirrorCmd represents the integrity mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Check and fix local files missing from the bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

// probeCmd represents the integrity probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Put, read, rename and delete a scratch file",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap()
		if err != nil {
			return err
		}
		svc := integrity.NewService(e.bucket, afero.NewOsFs(), e.cfg.Server.Root(), e.cfg.Server.AssetsPath, e.logger)

		report := svc.RunProbe(cmd.Context())
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

		if !report.Passed {
			return fmt.Errorf("probe failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(containerCmd, mirrorCmd, probeCmd)

	mirrorCmd.Flags().BoolVar(&fixFlag, "fix", false, "Upload missing files")
}

func runIntegrityChecks(ctx context.Context, runContainer, runMirror bool) error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	logg := e.logger

	svc := integrity.NewService(e.bucket, afero.NewOsFs(), e.cfg.Server.Root(), e.cfg.Server.AssetsPath, logg)

	if runContainer {
		logg.Info("Checking container...", zap.String("driver", e.cfg.Storage.Driver))
		if err := svc.CheckContainer(ctx); err != nil {
			return fmt.Errorf("container check failed: %w", err)
		}
		logg.Info("Container is reachable.")
	}

	if runMirror {
		logg.Info("Checking local assets against the bucket...")
		missing, err := svc.CheckMirror(ctx)
		if err != nil {
			return fmt.Errorf("mirror check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Bucket mirrors the assets folder.")
			return nil
		}

		logg.Warn("Files missing from bucket", zap.Strings("missing", missing))
		if !fixFlag {
			logg.Info("Run 'integrity mirror --fix' to upload missing files.")
			return nil
		}

		logg.Info("Uploading missing files...")
		if err := svc.FixMirror(ctx, missing); err != nil {
			return fmt.Errorf("failed to upload missing files: %w", err)
		}
		logg.Info("Missing files uploaded.", zap.Int("count", len(missing)))
	}

	return nil
}
