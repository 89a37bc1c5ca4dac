package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/video"
	"github.com/kozaktomas/face-attendance/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the camera and record attendance events",
	Long: `Watch captures frames from the camera, recognizes enrolled faces and
records clock-in and clock-out events in the attendance store. The loop
runs until interrupted or the camera stream ends.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int("device", -1, "V4L2 device index (overrides VIDEO_DEVICE)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	device := cfg.Video.Device
	if flagDevice := mustGetInt(cmd, "device"); flagDevice >= 0 {
		device = flagDevice
	}

	st, err := buildStore(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recognizer, err := buildRecognizer(ctx, cfg)
	if err != nil {
		return err
	}

	camera, err := video.OpenCamera(device)
	if err != nil {
		return err
	}
	defer camera.Close()

	recorder := attendance.NewRecorder(st, cfg.Attendance.Cooldown, cfg.Attendance.StrictAlternation)
	loop := watch.NewLoop(camera, recognizer, recorder)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	fmt.Printf("Watching device %d, press Ctrl+C to stop\n", device)

	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, video.ErrEndOfStream) {
			return errors.New("camera stream ended unexpectedly")
		}
		return fmt.Errorf("watch loop failed: %w", err)
	}
	return nil
}
