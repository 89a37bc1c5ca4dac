package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage the enrolled face gallery",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled people",
	RunE:  runGalleryList,
}

var galleryRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove all embeddings for a person",
	Args:  cobra.ExactArgs(1),
	RunE:  runGalleryRemove,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryRemoveCmd)
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	entries, err := loadGalleryEntries(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}

	names := gallery.Names(entries)
	if len(names) == 0 {
		fmt.Println("Gallery is empty")
		return nil
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Name]++
	}
	for _, name := range names {
		fmt.Printf("%s (%d embeddings)\n", name, counts[name])
	}
	return nil
}

func runGalleryRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.Gallery.DatabaseURL != "" {
		repo, err := gallery.NewPostgresRepository(&cfg.Gallery, cfg.Detector.Dim)
		if err != nil {
			return fmt.Errorf("failed to open gallery database: %w", err)
		}
		defer repo.Close()

		n, err := repo.DeleteByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
		fmt.Printf("Removed %d embeddings for %s\n", n, name)
		return nil
	}

	entries, err := gallery.LoadFile(cfg.Gallery.Path)
	if err != nil {
		return fmt.Errorf("failed to load gallery file: %w", err)
	}

	kept := entries[:0]
	removed := 0
	for _, entry := range entries {
		if gallery.NormalizeName(entry.Name) == gallery.NormalizeName(name) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed == 0 {
		fmt.Printf("No embeddings found for %s\n", name)
		return nil
	}

	if err := gallery.SaveFile(cfg.Gallery.Path, kept); err != nil {
		return fmt.Errorf("failed to save gallery file: %w", err)
	}
	fmt.Printf("Removed %d embeddings for %s\n", removed, name)
	return nil
}
