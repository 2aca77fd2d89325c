package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"cloud-assets/feature/files"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputFlag  string
	expiresFlag string
)

// filesCmd groups the bucket file operations
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage files in the bucket",
	Long:  `File names are relative to the site root (server.assets_root), e.g. assets/Uploads/logo.png.`,
}

var filesPutCmd = &cobra.Command{
	Use:   "put <name>",
	Short: "Upload a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := filesService()
		if err != nil {
			return err
		}
		key, err := svc.Put(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		logg.Info("Stored file", zap.String("name", args[0]), zap.String("key", key))
		return nil
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Download a stored file to stdout or --output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := filesService()
		if err != nil {
			return err
		}
		body, err := svc.Contents(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer body.Close()

		var out io.Writer = cmd.OutOrStdout()
		if outputFlag != "" {
			f, err := os.Create(outputFlag)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outputFlag, err)
			}
			defer f.Close()
			out = f
		}
		_, err = io.Copy(out, body)
		return err
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := filesService()
		if err != nil {
			return err
		}
		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logg.Info("Deleted file", zap.String("name", args[0]))
		return nil
	},
}

var filesMvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Rename a stored file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := filesService()
		if err != nil {
			return err
		}
		if err := svc.Rename(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logg.Info("Renamed file", zap.String("from", args[0]), zap.String("to", args[1]))
		return nil
	},
}

var filesExistsCmd = &cobra.Command{
	Use:   "exists <name>",
	Short: "Report whether a file is stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := filesService()
		if err != nil {
			return err
		}
		exists, err := svc.Exists(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(exists))
		return nil
	},
}

var filesSizeCmd = &cobra.Command{
	Use:   "size <name>",
	Short: "Print the stored size in bytes (-1 when missing)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := filesService()
		if err != nil {
			return err
		}
		size, err := svc.Size(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), size)
		return nil
	},
}

var filesLinkCmd = &cobra.Command{
	Use:   "link <name>",
	Short: "Print a temporary link to a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expires, err := files.ParseExpiry(expiresFlag)
		if err != nil {
			return err
		}
		svc, _, err := filesService()
		if err != nil {
			return err
		}
		link, err := svc.Link(cmd.Context(), args[0], expires)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func filesService() (*files.Service, *zap.Logger, error) {
	e, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	svc := files.NewService(e.bucket, afero.NewOsFs(), e.cfg.Server.Root(), e.cfg.Server.AssetsPath, e.logger)
	return svc, e.logger, nil
}

func init() {
	RootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesPutCmd, filesGetCmd, filesRmCmd, filesMvCmd, filesExistsCmd, filesSizeCmd, filesLinkCmd)

	filesGetCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the file here instead of stdout")
	filesLinkCmd.Flags().StringVar(&expiresFlag, "expires", "", "Link lifetime, e.g. 1h or 3600 (default 1h)")
}
