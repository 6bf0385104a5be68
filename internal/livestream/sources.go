package livestream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	_ FrameSource = (*SnapshotSource)(nil)
	_ FrameSource = (*DirectorySource)(nil)
)

// SnapshotSource pulls frames from an HTTP snapshot endpoint, the kind
// most IP cameras expose as a still-image URL.
type SnapshotSource struct {
	url    string
	client *http.Client
}

// NewSnapshotSource creates a source for the given snapshot URL.
func NewSnapshotSource(url string) *SnapshotSource {
	return &SnapshotSource{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Capture fetches one still image.
func (s *SnapshotSource) Capture(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return data, nil
}

// DirectorySource reads the newest image file from a directory. Useful
// with cameras or capture tools that drop frames onto disk.
type DirectorySource struct {
	dir string
}

// NewDirectorySource creates a source watching the given directory.
func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{dir: dir}
}

// Capture returns the bytes of the most recently modified image file.
func (d *DirectorySource) Capture(ctx context.Context) ([]byte, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}

	var frames []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		frames = append(frames, candidate{
			path:    filepath.Join(d.dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("no image files in %s", d.dir)
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].modTime.After(frames[j].modTime)
	})

	return os.ReadFile(frames[0].path)
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".webp":
		return true
	default:
		return false
	}
}
