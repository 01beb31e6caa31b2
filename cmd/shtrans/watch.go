package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/shtrans"
)

// settle is how long a manifest must stay quiet before it is rebuilt.
// Editors often save with several writes.
const settle = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <manifest>...",
	Short: "Recompile manifests whenever they change",
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watch(ctx, b, args, cmd.OutOrStdout())
	},
}

func init() {
	addBuildFlags(watchCmd.Flags())
}

// watch builds every file once, then rebuilds files as they change until
// ctx is done. Directories are watched rather than files so that editors
// replacing a file by rename are seen.
func watch(ctx context.Context, b *builder, files []string, out io.Writer) error {
	tracked := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = f
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	dirs := make(map[string]bool)
	for abs := range tracked {
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	rebuild := func(paths []string) error {
		results, err := b.run(ctx, paths)
		if err != nil {
			return err
		}
		// Failures are shown and the watch goes on.
		_ = report(out, results)
		return nil
	}
	if err := rebuild(files); err != nil {
		return err
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			f, ok := tracked[ev.Name]
			if !ok {
				continue
			}
			shtrans.Logger().Debug("manifest changed", "file", f, "op", ev.Op.String())
			pending[f] = true
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			shtrans.Logger().Warn("watch error", "err", err)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for _, f := range files {
				if pending[f] {
					paths = append(paths, f)
				}
			}
			clear(pending)
			if err := rebuild(paths); err != nil {
				return err
			}
		}
	}
}
