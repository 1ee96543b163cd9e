package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"filesort/internal/ipc"
	"filesort/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var (
				sent    bool
				message string
			)
			client, err := ipc.Dial(ctx.socketPath())
			if err == nil {
				defer client.Close()
				resp, callErr := client.TestNotification()
				if callErr != nil {
					return fmt.Errorf("send test notification: %w", callErr)
				}
				if resp == nil {
					return errors.New("missing notification response")
				}
				sent, message = resp.Sent, resp.Message
			} else {
				cfg, cfgErr := ctx.ensureConfig()
				if cfgErr != nil {
					return cfgErr
				}
				var sendErr error
				sent, message, sendErr = notifications.SendTest(cmd.Context(), notifications.NewService(cfg))
				if sendErr != nil {
					return fmt.Errorf("send test notification: %w", sendErr)
				}
			}
			switch {
			case message != "":
				fmt.Fprintln(out, message)
			case sent:
				fmt.Fprintln(out, "Test notification sent")
			default:
				fmt.Fprintln(out, "Notification not sent")
			}
			return nil
		},
	}
}
