package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ragchat/internal/uploader"
	"ragchat/internal/widget"

	"github.com/spf13/cobra"
)

// uploadCmd submits files from the command line
var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload files to the document index",
	Long: `Uploads every file concurrently and prints one status line per file in
the order given. Exits with status 1 when any upload failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runUpload(ctx, cmd.OutOrStdout(), client, cfg.Uploader.Concurrency, args)
	},
}

func runUpload(ctx context.Context, out io.Writer, b widget.UploadBackend, concurrency int, paths []string) error {
	files := make([]widget.File, len(paths))
	for i, p := range paths {
		files[i] = widget.LocalFile(p)
	}

	u := uploader.New(b, uploader.Options{Concurrency: concurrency})
	statuses := u.SubmitAll(ctx, files)
	for _, s := range statuses {
		fmt.Fprintln(out, s.Text())
	}

	if uploader.Failed(statuses) {
		return failureErr(errors.New("one or more uploads failed"))
	}
	return nil
}
