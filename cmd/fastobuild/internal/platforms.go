package internal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastogt/fastobuild/pkgs/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms and the detected host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog := platform.SupportedPlatformsList()
		for i, sp := range catalog {
			if sp.Name() == platform.Android {
				catalog[i] = platform.AndroidPlatforms(cfg.Android.NDK())
			}
		}
		renderPlatforms(cmd.OutOrStdout(), catalog, detectHost())
		return nil
	},
}

func init() {
	platformsCmd.Flags().String("ndk-root", "", "Android NDK root")
	platformsCmd.Flags().Int("android-api", 0, "Android API level")
	rootCmd.AddCommand(platformsCmd)
}

type host struct {
	OS, Arch string
	Distro   string
}

func detectHost() host {
	h := host{OS: platform.HostOS(), Arch: platform.HostArch()}
	if h.OS == platform.Linux {
		if f, err := platform.OSRelease(); err == nil {
			h.Distro = string(f)
		} else {
			logger.Debug("distribution not detected", "err", err)
		}
	}
	return h
}

var archWidths = []int{4, 10, 6}

func renderPlatforms(w io.Writer, catalog []*platform.SupportedPlatforms, h host) {
	fmt.Fprintln(w, titleStyle.Render("Supported platforms"))
	for _, sp := range catalog {
		types := make([]string, 0, len(sp.PackageTypes()))
		for _, t := range sp.PackageTypes() {
			types = append(types, string(t))
		}
		fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render(sp.Name()), mutedStyle.Render(strings.Join(types, ", ")))
		for _, a := range sp.Architectures() {
			fmt.Fprintln(w, row(archWidths, "", a.Name(), strconv.Itoa(a.Bit()), a.DefaultInstallPrefix()))
		}
	}

	detected := h.OS + "/" + h.Arch
	if h.Distro != "" {
		detected += " (" + h.Distro + ")"
	}
	fmt.Fprintf(w, "\n%s %s\n", titleStyle.Render("Host:"), detected)
}
