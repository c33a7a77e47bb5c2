package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// CreateSessionDir creates the working directory for a session. All fixed
// filenames (intro.jpg, output_audio.mp3, image_list.txt, ...) live inside
// it, so concurrent sessions never collide.
func CreateSessionDir(baseDir, sessionID string) (string, error) {
	dir := filepath.Join(baseDir, sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return dir, nil
}

// SaveUpload writes an uploaded file to the session directory
func SaveUpload(file *multipart.FileHeader, destPath string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

// WriteFile writes a byte stream create-or-overwrite
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CleanupSession removes a session's working directory
func CleanupSession(baseDir, sessionID string) error {
	return os.RemoveAll(filepath.Join(baseDir, sessionID))
}

// ScheduleCleanup removes a session's files after a delay
func ScheduleCleanup(baseDir, sessionID string, delay time.Duration) {
	go func() {
		time.Sleep(delay)
		_ = CleanupSession(baseDir, sessionID)
	}()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
