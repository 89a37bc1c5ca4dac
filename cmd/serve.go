package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/video"
	"github.com/kozaktomas/face-attendance/internal/watch"
	"github.com/kozaktomas/face-attendance/internal/web"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the attendance web server. It exposes raw and consolidated
attendance records over a JSON API and can run the camera watch loop
alongside, mirroring the camera as an MJPEG stream on /video_feed.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("camera", false, "Run the camera watch loop alongside the server")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, err := buildStore(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var feed *handlers.FeedHub
	if mustGetBool(cmd, "camera") {
		recognizer, err := buildRecognizer(ctx, cfg)
		if err != nil {
			return err
		}

		camera, err := video.OpenCamera(cfg.Video.Device)
		if err != nil {
			return err
		}
		defer camera.Close()

		feed = handlers.NewFeedHub()
		recorder := attendance.NewRecorder(st, cfg.Attendance.Cooldown, cfg.Attendance.StrictAlternation)
		loop := watch.NewLoop(camera, recognizer, recorder)
		loop.OnFrame = feed.Publish

		go func() {
			if err := loop.Run(ctx); err != nil && !errors.Is(err, video.ErrEndOfStream) {
				fmt.Printf("Watch loop stopped: %v\n", err)
			}
		}()
		fmt.Printf("Camera watch loop running on device %d\n", cfg.Video.Device)
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(st, port, host, feed)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
