package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastogt/fastobuild/internal/build"
	"github.com/fastogt/fastobuild/pkgs/platform"
)

var (
	buildShared bool
	buildWithQt bool
)

var buildCmd = &cobra.Command{
	Use:   "build NAME[@VERSION]...",
	Short: "Build dependencies into the install prefix",
	Long: `Build retrieves each named dependency into the build directory, builds it
for the target platform and installs it into the prefix, in the order given.
Versioned dependencies (cmake, meson, openssl) need NAME@VERSION.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	addSessionFlags(buildCmd)
	buildCmd.Flags().Bool("keep-going", false, "Continue after a failed dependency and report all failures")
	buildCmd.Flags().String("recipes", "", "TOML file with extra or overriding recipes")
	buildCmd.Flags().String("git-org", "", "GitHub organization git recipes are cloned from")
	buildCmd.Flags().BoolVar(&buildShared, "shared", false, "Build shared libraries where the recipe supports it")
	buildCmd.Flags().BoolVar(&buildWithQt, "with-qt", false, "Enable Qt support where the recipe supports it")
	rootCmd.AddCommand(buildCmd)
}

// addSessionFlags registers the flags that select the target and its
// directories. Their values reach the command through the loaded config.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("platform", "", "Target platform (default: host)")
	cmd.Flags().String("arch", "", "Target architecture (default: host)")
	cmd.Flags().String("prefix", "", "Install prefix (default: the architecture's prefix)")
	cmd.Flags().String("build-dir", "", "Directory sources are retrieved into; it is recreated")
	cmd.Flags().String("ndk-root", "", "Android NDK root")
	cmd.Flags().Int("android-api", 0, "Android API level")
}

func runBuild(cmd *cobra.Command, args []string) error {
	targets, err := parseTargets(args, buildShared, buildWithQt)
	if err != nil {
		return err
	}
	recipes, err := recipeTable(cfg.Recipes)
	if err != nil {
		return err
	}
	// Check names before the session recreates the build directory.
	for _, t := range targets {
		if _, ok := recipes.Lookup(t.Name); !ok {
			return fmt.Errorf("%w: %s", build.ErrUnknownRecipe, t.Name)
		}
	}

	s, err := newSession(sessionRequest(), build.WithRecipes(recipes), build.WithGitOrg(cfg.GitOrg))
	if err != nil {
		return err
	}
	err = s.BuildAll(cmd.Context(), targets, cfg.KeepGoing)
	for _, r := range s.Built() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("installed"), recordLabel(r))
	}
	return err
}

// sessionRequest is the target the loaded config selects.
func sessionRequest() build.Request {
	return build.Request{
		Platform: cfg.Platform,
		Arch:     cfg.Arch,
		BuildDir: cfg.BuildDir,
		Prefix:   cfg.Prefix,
	}
}

func newSession(req build.Request, opts ...build.Option) (*build.Session, error) {
	opts = append(opts,
		build.WithLogger(logger),
		build.WithPlatformOptions(platform.WithNDK(cfg.Android.NDK())),
	)
	return build.New(req, opts...)
}

// parseTargets parses NAME[@VERSION] arguments and applies the
// command-wide options to each.
func parseTargets(args []string, shared, withQt bool) ([]build.Target, error) {
	targets := make([]build.Target, 0, len(args))
	for _, arg := range args {
		t, err := build.ParseTarget(arg)
		if err != nil {
			return nil, err
		}
		t.Options.Shared = shared
		t.Options.WithQt = withQt
		targets = append(targets, t)
	}
	return targets, nil
}

// recipeTable returns the built-in recipes, extended by path when set.
func recipeTable(path string) (*build.Table, error) {
	t := build.Builtin()
	if path == "" {
		return t, nil
	}
	extra, err := build.LoadRecipes(path)
	if err != nil {
		return nil, err
	}
	return t.Merge(extra), nil
}

func recordLabel(r build.Record) string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "@" + r.Version
}
