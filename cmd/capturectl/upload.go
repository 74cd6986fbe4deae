package main

import (
	"fmt"
	"os"

	recordingimpl "github.com/foxseedlab/voicecap/external/recording"
	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/spf13/cobra"
)

func uploadCmd(flags *globalFlags) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a recorded audio file as one capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := flags.parsedMode()
			if err != nil {
				return err
			}
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read audio: %w", err)
			}
			if mimeType == "" {
				mimeType = recordingimpl.MimeTypeForPath(args[0])
			}
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			resp, err := flags.client().Submit(cmd.Context(), capture.Request{
				Audio:    capture.AudioBlob{Bytes: b, MimeType: mimeType},
				UserID:   flags.userID,
				Mode:     mode,
				Timezone: flags.timezone,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&mimeType, "type", "", "audio MIME type (guessed from the extension when empty)")
	return cmd
}
