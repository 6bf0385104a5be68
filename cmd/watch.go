package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/facegate/internal/livestream"
	"github.com/kozaktomas/facegate/internal/recognition"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run live recognition against a frame source",
	Long: `Watch a frame source and recognize faces continuously. Frames come
either from an HTTP snapshot URL (--snapshot-url) or from the newest
image in a directory (--frames-dir). While the same person stays in
frame, submissions pause; they resume as soon as the face changes or
disappears.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("server", "http://localhost:8080", "Facegate server base URL")
	watchCmd.Flags().String("snapshot-url", "", "HTTP snapshot URL to capture frames from")
	watchCmd.Flags().String("frames-dir", "", "Directory to read the newest frame from")
	watchCmd.Flags().Duration("interval", time.Second, "Delay between frame submissions")
}

func runWatch(cmd *cobra.Command, args []string) error {
	snapshotURL := mustGetString(cmd, "snapshot-url")
	framesDir := mustGetString(cmd, "frames-dir")

	var source livestream.FrameSource
	switch {
	case snapshotURL != "" && framesDir != "":
		return errors.New("use either --snapshot-url or --frames-dir, not both")
	case snapshotURL != "":
		source = livestream.NewSnapshotSource(snapshotURL)
	case framesDir != "":
		source = livestream.NewDirectorySource(framesDir)
	default:
		return errors.New("either --snapshot-url or --frames-dir is required")
	}

	rec := livestream.NewAPIRecognizer(mustGetString(cmd, "server"))

	ctrl := livestream.NewController(source, rec, livestream.Options{
		CaptureInterval: mustGetDuration(cmd, "interval"),
		Hooks: livestream.Hooks{
			OnStateChange: func(state livestream.State) {
				fmt.Printf("State: %s\n", state)
			},
			OnResult: func(outcome *recognition.Outcome) {
				if outcome == nil {
					return
				}
				if outcome.Recognized {
					fmt.Printf("Recognized %s (confidence %.2f)\n",
						outcome.Person.Name, outcome.Person.Confidence)
				} else {
					fmt.Printf("No match (confidence %.2f)\n", outcome.Confidence)
				}
			},
		},
	})

	ctrl.Start(context.Background())
	fmt.Println("Watching for faces, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nStopping...")
	ctrl.Stop()
	return nil
}
