package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	recordingimpl "github.com/foxseedlab/voicecap/external/recording"
	"github.com/foxseedlab/voicecap/internal/recording"
	"github.com/spf13/cobra"
)

func recordCmd(flags *globalFlags) *cobra.Command {
	var (
		device      string
		maxDuration time.Duration
		chunkDelay  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "record [input...]",
		Short: "Run the recording state machine against audio file inputs",
		Long: `Each input file acts as a microphone. Recording starts immediately and
stops on Enter, Ctrl-C, the end of the input or the safety timeout. The
capture is then uploaded once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := flags.parsedMode()
			if err != nil {
				return err
			}
			outcomes := make(chan recording.Outcome, 1)
			ctrl := recording.NewController(recording.Host{
				Devices:     recordingimpl.FileDevices{Paths: args},
				NewRecorder: recordingimpl.NewRecorderFactory(recordingimpl.RecorderOptions{ChunkInterval: chunkDelay}),
				Codecs:      recordingimpl.FileCodecs{Path: devicePath(device, args)},
				Cancel:      recordingimpl.SignalCancel{},
				Submitter:   flags.client(),
			}, recording.Options{
				UserID:      flags.userID,
				Mode:        mode,
				Timezone:    flags.timezone,
				MaxDuration: maxDuration,
				OnResult:    func(o recording.Outcome) { outcomes <- o },
			})
			if device != "" {
				if err := ctrl.SelectDevice(device); err != nil {
					return err
				}
			}

			if err := ctrl.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "recording... press Enter to stop")
			go func() {
				_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
				ctrl.Stop()
			}()

			o := <-outcomes
			if o.Err != nil {
				return fmt.Errorf("capture failed: %w", o.Err)
			}
			if o.Response == nil {
				return errors.New("capture finished without a response")
			}
			return printResponse(cmd, o.Response)
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "input file to use instead of automatic selection")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", recording.MaxRecordingDuration, "safety timeout for one recording")
	cmd.Flags().DurationVar(&chunkDelay, "chunk-interval", 250*time.Millisecond, "delay between emitted chunks")
	return cmd
}

func devicePath(device string, inputs []string) string {
	if device != "" {
		return device
	}
	return inputs[0]
}
