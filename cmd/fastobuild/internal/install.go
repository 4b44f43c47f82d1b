package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var installPip bool

var installCmd = &cobra.Command{
	Use:   "install NAME...",
	Short: "Install system packages for the target platform",
	Long: `Install installs packages with the target platform's package manager,
or with pip3 when --pip is set.

Packages are installed from a temporary directory, so the configured build
directory and its record of built dependencies are left alone. An explicit
--build-dir is used instead, and is recreated like it is for build.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	addSessionFlags(installCmd)
	installCmd.Flags().BoolVar(&installPip, "pip", false, "Install Python packages with pip3")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	req := sessionRequest()
	if !cmd.Flags().Changed("build-dir") {
		dir, err := os.MkdirTemp("", "fastobuild-install-")
		if err != nil {
			return fmt.Errorf("create install dir: %w", err)
		}
		defer os.RemoveAll(dir)
		req.BuildDir = dir
	}

	s, err := newSession(req)
	if err != nil {
		return err
	}
	for _, name := range args {
		if installPip {
			err = s.InstallPythonPackage(cmd.Context(), name)
		} else {
			err = s.InstallPackage(cmd.Context(), name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
