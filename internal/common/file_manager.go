package common

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// FileInfo contains metadata about a file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// FileReadOptions configures file reading behavior
type FileReadOptions struct {
	MaxSize int64 // Maximum file size to read (0 = no limit)
}

// DefaultFileReadOptions returns default file reading options
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{
		MaxSize: 50 * 1024 * 1024,
	}
}

// FileManager provides high-level file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileInfo returns information about a file
func (fm *FileManager) GetFileInfo(path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, WrapError(err, "failed to stat: "+path)
	}
	return &FileInfo{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadFile reads a regular file, refusing anything larger than opts.MaxSize.
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	info, err := fm.GetFileInfo(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, NewValidationError("path", path, "is a directory")
	}
	if opts.MaxSize > 0 && info.Size > opts.MaxSize {
		return nil, NewValidationError("path", path, fmt.Sprintf("file size %d exceeds limit %d", info.Size, opts.MaxSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, "failed to open file: "+path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fm.logger.Error().Err(cerr).Str("path", path).Msg("Failed to close file.")
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	if fm.FileExists(path) {
		info, err := fm.GetFileInfo(path)
		if err != nil {
			return WrapError(err, "failed to check directory: "+path)
		}
		if !info.IsDir {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// ReplaceFile moves src to dst, removing any file already at dst.
func (fm *FileManager) ReplaceFile(src, dst string) error {
	if src == dst {
		return nil
	}
	if fm.FileExists(dst) {
		if err := os.Remove(dst); err != nil {
			return WrapError(err, "failed to remove existing file: "+dst)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return WrapErrorf(err, "failed to rename %s to %s", src, dst)
	}
	fm.logger.Debug().Str("from", src).Str("to", dst).Msg("Replaced file")
	return nil
}

// CleanDirectory removes every regular file in dir for which remove returns true.
// Subdirectories are left alone. It returns the number of files removed.
func (fm *FileManager) CleanDirectory(dir string, remove func(name string) bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, WrapError(err, "failed to list directory: "+dir)
	}

	collector := &ErrorCollector{}
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !remove(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			collector.AddWithContext(err, "failed to remove "+path)
			continue
		}
		removed++
	}

	fm.logger.Info().Str("dir", dir).Int("removed", removed).Msg("Cleaned directory")
	return removed, collector.Error()
}
