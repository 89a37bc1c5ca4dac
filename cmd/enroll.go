package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognize"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name> <image>...",
	Short: "Enroll a person's face images into the gallery",
	Long: `Enroll runs face detection on the given images and stores the face
embeddings in the gallery under the person's name. Images with no face
or with multiple faces are skipped with a warning; the most confident
detection is used when scores are close.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

// bestDetection picks the detection with the highest score.
func bestDetection(detections []recognize.Detection) *recognize.Detection {
	var best *recognize.Detection
	for i := range detections {
		if best == nil || detections[i].DetScore > best.DetScore {
			best = &detections[i]
		}
	}
	return best
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	paths := args[1:]

	cfg := config.Load()
	detector := recognize.NewDetector(cfg.Detector.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription(fmt.Sprintf("Enrolling %s", name)),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var entries []gallery.Entry
	var skipped int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		resized, err := recognize.ResizeImage(data, constants.MaxFrameSize)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}

		detections, err := detector.DetectFaces(ctx, resized)
		if err != nil {
			return fmt.Errorf("face detection failed for %s: %w", path, err)
		}

		best := bestDetection(detections)
		if best == nil || len(best.Embedding) == 0 {
			fmt.Printf("\nWarning: no face found in %s, skipping\n", path)
			skipped++
			_ = bar.Add(1)
			continue
		}
		if len(detections) > 1 {
			fmt.Printf("\nWarning: %d faces in %s, using the most confident one\n", len(detections), path)
		}

		entries = append(entries, gallery.Entry{Name: name, Embedding: best.Embedding})
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	if len(entries) == 0 {
		return fmt.Errorf("no usable faces found in %d images", len(paths))
	}

	if cfg.Gallery.DatabaseURL != "" {
		repo, err := gallery.NewPostgresRepository(&cfg.Gallery, cfg.Detector.Dim)
		if err != nil {
			return fmt.Errorf("failed to open gallery database: %w", err)
		}
		defer repo.Close()

		for _, entry := range entries {
			if err := repo.Add(ctx, entry); err != nil {
				return fmt.Errorf("failed to store embedding: %w", err)
			}
		}
	} else {
		existing, err := gallery.LoadFile(cfg.Gallery.Path)
		if err != nil {
			return fmt.Errorf("failed to load gallery file: %w", err)
		}
		if err := gallery.SaveFile(cfg.Gallery.Path, append(existing, entries...)); err != nil {
			return fmt.Errorf("failed to save gallery file: %w", err)
		}
	}

	fmt.Printf("Enrolled %d embeddings for %s (%d images skipped)\n", len(entries), name, skipped)
	return nil
}
