package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ragchat/internal/widget"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sendCmd runs one chat exchange
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Long: `Sends the arguments, joined by spaces, as one chat message and prints
the exchange. Exits with status 1 when the reply is an error message.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runSend(ctx, cmd.OutOrStdout(), client, client.Port(), strings.Join(args, " "))
	},
}

// runSend drives one exchange through the component state.
func runSend(ctx context.Context, out io.Writer, b widget.ChatBackend, port, message string) error {
	state := widget.NewState(port)
	_, err := state.SendMessage(ctx, b, message)
	if errors.Is(err, widget.ErrIgnored) {
		return usageErr(errors.New("message is empty"))
	}

	for _, msg := range state.Transcript.Messages() {
		label := "you"
		if msg.Sender == widget.SenderAI {
			label = "ai"
		}
		for _, line := range msg.Lines() {
			fmt.Fprintf(out, "%s> %s\n", label, line)
		}
	}

	if err != nil {
		if logger != nil {
			logger.Debug("chat failed", zap.Error(err))
		}
		return failureErr(fmt.Errorf("chat failed: %w", err))
	}
	return nil
}
