// Package library manages the on-disk photo and video collections.
// The filesystem is the source of truth: there is no persisted index, and
// listings are rebuilt from a directory scan every time they are requested.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extension allow-lists for the two browser panes.
var (
	photoExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true}
	videoExts = map[string]bool{".mp4": true, ".mkv": true, ".avi": true}
)

// EnsureDirs creates the photo and video output directories, including
// parents, if they do not exist. Safe to call repeatedly.
func EnsureDirs(photoDir, videoDir string) error {
	for _, dir := range []string{photoDir, videoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create media directory %s: %w", dir, err)
		}
	}
	return nil
}

// Photos lists image filenames in dir, lexicographically sorted.
// A missing directory yields an empty listing, not an error.
func Photos(dir string) ([]string, error) {
	return scan(dir, photoExts)
}

// Videos lists video filenames in dir, lexicographically sorted.
func Videos(dir string) ([]string, error) {
	return scan(dir, videoExts)
}

func scan(dir string, allowed map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if allowed[ext] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// timestampLayout matches the filenames the capture side has always written.
const timestampLayout = "20060102_150405"

// PhotoPath returns the output path for a still captured at t.
func PhotoPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("photo_%s.jpg", t.Format(timestampLayout)))
}

// VideoPath returns the output path for a recording started at t.
func VideoPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("video_%s.mp4", t.Format(timestampLayout)))
}
