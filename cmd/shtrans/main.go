// Command shtrans translates shader interface manifests to HLSL.
//
// Usage:
//
//	shtrans compile [flags] <manifest>...
//	shtrans watch [flags] <manifest>...
//	shtrans version
//
// Examples:
//
//	shtrans compile blur.toml               # Writes blur.hlsl next to the manifest
//	shtrans compile -o out -j 8 shaders/*.toml
//	shtrans compile --stdout --info blur.yaml
//	shtrans watch shaders/*.toml            # Recompile on every save
//
// Settings come from the nearest shtrans.toml above the working directory,
// or from --config.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/shtrans"
	"github.com/gogpu/shtrans/config"
)

var rootCmd = &cobra.Command{
	Use:           "shtrans",
	Short:         "ESSL to HLSL shader interface translator",
	Long:          "shtrans emits the HLSL declarations of a fragment shader described by a TOML or YAML manifest.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log compiler statistics to stderr")
	rootCmd.PersistentFlags().String("config", "", "configuration file (default: nearest shtrans.toml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error:"), err)
		os.Exit(1)
	}
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
	cacheColor = color.New(color.FgCyan)
)

// setup applies the global flags.
func setup(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("invalid --color %q, want auto, on, or off", mode)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	shtrans.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig returns the --config file or the nearest shtrans.toml.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
