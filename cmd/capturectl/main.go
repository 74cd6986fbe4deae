package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	transportimpl "github.com/foxseedlab/voicecap/external/transport"
	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/spf13/cobra"
)

var Version = "dev"

type globalFlags struct {
	server   string
	userID   string
	mode     string
	timezone string
	timeout  time.Duration
	debug    bool
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:     "capturectl",
		Short:   "Upload voice captures to a voicecap server",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flags.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.server, "server", envOr("VOICECAP_SERVER", "http://localhost:8080"), "voicecap server base URL")
	pf.StringVarP(&flags.userID, "user", "u", os.Getenv("VOICECAP_USER_ID"), "user id sent with each capture")
	pf.StringVarP(&flags.mode, "mode", "m", "review", "capture mode (review, autosave, psych)")
	pf.StringVar(&flags.timezone, "timezone", "", "IANA timezone (defaults to the host zone)")
	pf.DurationVar(&flags.timeout, "timeout", 90*time.Second, "upload timeout")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(uploadCmd(flags))
	rootCmd.AddCommand(recordCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (f *globalFlags) client() *transportimpl.Client {
	return transportimpl.NewClient(transportimpl.ClientConfig{BaseURL: f.server, Timeout: f.timeout})
}

func (f *globalFlags) parsedMode() (capture.Mode, error) {
	return capture.ParseMode(f.mode)
}

func printResponse(cmd *cobra.Command, resp *capture.Response) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("capture failed: %s", resp.Error)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
