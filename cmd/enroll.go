package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/recognition"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image>",
	Short: "Enroll a face from an image file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnroll,
}

var enrollDirCmd = &cobra.Command{
	Use:   "enroll-dir <directory>",
	Short: "Enroll faces from all images in a directory",
	Long: `Enroll every image in a directory. The person's name is derived
from the file name: "jane_doe.jpg" enrolls as "jane doe". Images that
duplicate an already enrolled face are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrollDir,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(enrollDirCmd)

	enrollCmd.Flags().String("name", "", "Name of the person (required)")
	_ = enrollCmd.MarkFlagRequired("name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	service, _, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	name := mustGetString(cmd, "name")
	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	result, err := service.Enroll(context.Background(), name, imageData)
	if err != nil {
		var conflict *recognition.ConflictError
		if errors.As(err, &conflict) {
			return fmt.Errorf("face already enrolled as %q (id %d, similarity %.3f)",
				conflict.ExistingName, conflict.ExistingID, conflict.Similarity)
		}
		return err
	}

	fmt.Printf("Enrolled %q with id %d (detection confidence %.2f)\n",
		result.Face.Name, result.Face.ID, result.Confidence)
	return nil
}

// nameFromFile derives an enrollment name from a file name:
// "jane_doe.jpg" becomes "jane doe".
func nameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}

func runEnrollDir(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	service, _, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".bmp", ".webp":
			images = append(images, filepath.Join(args[0], entry.Name()))
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no image files found in %s", args[0])
	}

	bar := progressbar.Default(int64(len(images)), "Enrolling faces")
	var enrolled, skipped, failed int

	for _, path := range images {
		_ = bar.Add(1)

		imageData, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("\n%s: %v\n", path, err)
			failed++
			continue
		}

		_, err = service.Enroll(context.Background(), nameFromFile(path), imageData)
		switch {
		case err == nil:
			enrolled++
		case errors.As(err, new(*recognition.ConflictError)):
			skipped++
		default:
			fmt.Printf("\n%s: %v\n", path, err)
			failed++
		}
	}

	fmt.Printf("\nDone: %d enrolled, %d duplicates skipped, %d failed\n", enrolled, skipped, failed)
	return nil
}
