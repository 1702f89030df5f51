// Package validation holds small input checks shared by the CLI and the API.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitLocation splits a browser-captured "lat,long" pair. Capture failures
// ("unavailable", "error:...") and malformed values yield ok=false, and the
// submission goes ahead without coordinates.
func SplitLocation(location string) (latitude, longitude string, ok bool) {
	location = strings.TrimSpace(location)
	if location == "" || location == "unavailable" || strings.HasPrefix(location, "error:") {
		return "", "", false
	}
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	latitude, longitude = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if latitude == "" || longitude == "" {
		return "", "", false
	}
	return latitude, longitude, true
}

// IsValidOutputPath checks that a file can be created at path: its directory
// exists and path itself is not a directory.
func IsValidOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// IsValidFilePermissions rejects modes that grant any access to others.
// Config files may carry the admin secret.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
