package internal

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fastogt/fastobuild/internal/config"
)

// Version is set at link time.
var Version = "dev"

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   "fastobuild",
	Short: "fastobuild builds third-party dependencies for a target platform",
	Long: `fastobuild fetches, configures, builds and installs the third-party
dependencies of the FastoGT projects into an install prefix, for the host
or for a cross target such as Android.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/fastobuild/"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig resolves the configuration for the command about to run.
// cmd.Flags() holds the command's own flags merged with the persistent ones.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, path, err := config.Load(config.LoadOptions{
		ConfigFile: cfgFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	cfg = c
	logger = newLogger(cmd.ErrOrStderr(), c.Verbose)
	if path != "" {
		logger.Debug("loaded config", "file", path)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "fastobuild"})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
