package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ragchat/internal/uploader"
	"ragchat/internal/widget"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd turns a directory into a drop folder
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload every file dropped into a directory",
	Long: `Watches a directory and uploads each regular file created in or moved
into it, once. Status lines stream to stdout until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, cmd.OutOrStdout(), client, args[0], nil)
	},
}

func runWatch(ctx context.Context, out io.Writer, b widget.UploadBackend, dir string, onReady func()) error {
	var mu sync.Mutex
	u := uploader.New(b, uploader.Options{
		Concurrency: cfg.Uploader.Concurrency,
		OnUpdate: func(s widget.UploadStatus) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, s.Text())
		},
	})

	if logger != nil {
		logger.Info("watching drop folder", zap.String("dir", dir))
	}
	if err := u.Watch(ctx, dir, uploader.WatchOptions{OnReady: onReady}); err != nil {
		return usageErr(err)
	}
	return nil
}
