package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/shtrans/config"
	"github.com/gogpu/shtrans/hlsl"
)

var compileCmd = &cobra.Command{
	Use:   "compile <manifest>...",
	Short: "Translate manifests to HLSL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		settings, err := settingsFromFlags(cmd, cfg)
		if err != nil {
			return err
		}
		b, err := newBuilder(settings)
		if err != nil {
			return err
		}
		defer b.Close()

		results, err := b.run(cmd.Context(), args)
		if err != nil {
			return err
		}
		status := cmd.ErrOrStderr()
		if settings.stdout == nil {
			status = cmd.OutOrStdout()
		}
		return report(status, results)
	},
}

func init() {
	addBuildFlags(compileCmd.Flags())
	compileCmd.Flags().Bool("stdout", false, "print the generated code instead of writing files")
}

// addBuildFlags registers the flags compile and watch share.
func addBuildFlags(f *pflag.FlagSet) {
	f.IntP("jobs", "j", 0, "parallel compilations (default: configuration, then one per CPU)")
	f.StringP("out", "o", "", "output directory (default: next to each manifest)")
	f.Bool("info", false, "also write the translation info as YAML")
	f.Bool("no-cache", false, "bypass the disk cache")
	f.String("shader-model", "", "target shader model, e.g. 5.0 or 5.1")
}

// settingsFromFlags layers command line flags over the configuration.
func settingsFromFlags(cmd *cobra.Command, cfg *config.Config) (buildSettings, error) {
	f := cmd.Flags()
	s := buildSettings{
		opts:     cfg.Options(),
		jobs:     cfg.Build.Jobs,
		cacheDir: cfg.CacheDir(),
		outDir:   cfg.Build.OutDir,
	}
	if f.Changed("jobs") {
		s.jobs, _ = f.GetInt("jobs")
		if s.jobs < 0 {
			return s, fmt.Errorf("--jobs %d is negative", s.jobs)
		}
	}
	if f.Changed("out") {
		s.outDir, _ = f.GetString("out")
	}
	if noCache, _ := f.GetBool("no-cache"); noCache {
		s.cacheDir = ""
	}
	if sm, _ := f.GetString("shader-model"); sm != "" {
		model, err := hlsl.ParseShaderModel(sm)
		if err != nil {
			return s, err
		}
		s.opts.HLSL.ShaderModel = model
		if err := s.opts.HLSL.Validate(); err != nil {
			return s, err
		}
	}
	s.info, _ = f.GetBool("info")
	if f.Lookup("stdout") != nil {
		if toStdout, _ := f.GetBool("stdout"); toStdout {
			s.stdout = cmd.OutOrStdout()
		}
	}
	return s, nil
}

// report prints one status line per manifest and fails when any did.
func report(w io.Writer, results []outcome) error {
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("FAIL"), r.Err)
		case r.Cached:
			fmt.Fprintf(w, "%s %s\n", cacheColor.Sprint("cached"), describe(r))
		default:
			fmt.Fprintf(w, "%s %s\n", okColor.Sprint("ok"), describe(r))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d manifests failed", failed, len(results))
	}
	return nil
}

func describe(r outcome) string {
	target := r.Path
	if r.Output != "" {
		target += " -> " + r.Output
	}
	return fmt.Sprintf("%s (%s, %d helpers)", target, r.Result.Info.RequiredShaderModel, len(r.Result.Info.HelperFunctions))
}
