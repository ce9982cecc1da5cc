package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [dir]",
	Short: "Process a directory of photos",
	Long: `Process every photo in a directory through face detection and identity
matching. Photos are processed strictly one at a time with a cooldown
between them, so faces of one photo are never matched against a stale
view of the identity store. Defaults to LIBRARY_DIR when no directory
is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("event", "", "Event namespace for the identities")
	processCmd.Flags().Int("cooldown", 0, "Cooldown between photos in milliseconds (default from config)")
	processCmd.Flags().Int("limit", 0, "Maximum number of photos to process (0 = all)")
}

// collectPhotos lists photo files in a directory, sorted by name.
func collectPhotos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var photos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif":
			photos = append(photos, e.Name())
		}
	}
	return photos, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	dir := cfg.Library.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory given and LIBRARY_DIR is not set")
	}

	namespace := mustGetString(cmd, "event")
	cooldownMs := mustGetInt(cmd, "cooldown")
	if cooldownMs <= 0 {
		cooldownMs = constants.DefaultProcessCooldown
	}
	cooldown := time.Duration(cooldownMs) * time.Millisecond
	limit := mustGetInt(cmd, "limit")

	photos, err := collectPhotos(dir)
	if err != nil {
		return err
	}
	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}
	if len(photos) == 0 {
		fmt.Println("No photos found")
		return nil
	}

	ctx := context.Background()
	eng, err := buildEngine(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer eng.close()

	fmt.Printf("Processing %d photos from %s\n", len(photos), dir)

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Matching faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var processed, faces, errors int
	for i, name := range photos {
		imageData, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("\nError reading %s: %v\n", name, err)
			errors++
			_ = bar.Add(1)
			continue
		}

		photoUID := strings.TrimSuffix(name, filepath.Ext(name))
		result, err := eng.processor.ProcessPhoto(ctx, photoUID, imageData, namespace)
		if err != nil {
			fmt.Printf("\nError processing %s: %v\n", name, err)
			errors++
		} else {
			processed++
			faces += len(result.FaceIDs)
		}
		_ = bar.Add(1)

		if i < len(photos)-1 {
			time.Sleep(cooldown)
		}
	}

	fmt.Printf("\n\nDone: %d photos processed, %d faces matched, %d errors\n", processed, faces, errors)
	return nil
}
