// Package api holds the on-disk surface of standing's configuration: where
// the per-user gradebook lives, how a gradebook is found next to a scores
// file, and how gradebooks are read and written.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/macropower/standing/pkg/yaml"
)

const (
	// AppName names the per-user configuration directory and prefixes
	// environment variables.
	AppName = "standing"

	// MaxFileSize bounds the scores files and gradebooks read by [ReadFile].
	MaxFileSize = 32 << 20
)

var (
	ErrIsDirectory = errors.New("path is a directory")
	ErrNotRegular  = errors.New("not a regular file")
	ErrTooLarge    = errors.New("file too large")
)

// ConfigDir returns $XDG_CONFIG_HOME/standing, or ~/.config/standing when
// XDG_CONFIG_HOME is unset or empty. Without a home directory it falls back
// to a directory under [os.TempDir].
func ConfigDir() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, AppName)
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", AppName)
	}

	dir := filepath.Join(os.TempDir(), AppName)

	slog.Warn("no home directory, keeping configuration in temp dir",
		slog.String("path", dir),
		slog.Any("error", err),
	)

	return dir
}

// GetConfigPath returns the path of filename inside [ConfigDir].
func GetConfigPath(filename string) string {
	return filepath.Join(ConfigDir(), filename)
}

// ReadFile reads a regular file of at most [MaxFileSize] bytes.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	err = checkRegular(path, info)
	if err != nil {
		return nil, err
	}

	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w: %s exceeds %s", path, ErrTooLarge,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(MaxFileSize))
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// MarshalYAML encodes obj as a single YAML document.
func MarshalYAML(obj any, opts ...yaml.EncoderOpt) ([]byte, error) {
	var b bytes.Buffer

	enc := yaml.NewEncoder(&b, opts...)

	err := enc.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

// FindConfigFile looks for any of fileNames in the directory of targetPath
// (or targetPath itself, if it is a directory) and then in each parent up to
// the filesystem root. It returns the first regular file found, or "".
func FindConfigFile(targetPath string, fileNames []string) (string, error) {
	dir, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}

	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)

			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// WriteDefaultFile writes data to path, creating parent directories. An
// existing file is kept unless force is set, in which case it is renamed to
// <path>.<timestamp>.old first. kind names the file in logs and errors.
func WriteDefaultFile(path string, data []byte, force bool, kind string) error {
	exists := false

	info, err := os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("stat %s file: %w", kind, err)
	default:
		err = checkRegular(path, info)
		if err != nil {
			return err
		}

		exists = true
	}

	if exists && !force {
		slog.Debug("keeping existing file",
			slog.String("type", kind),
			slog.String("path", path),
		)

		return nil
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if exists {
		backup := fmt.Sprintf("%s.%s.old", path, time.Now().Format("20060102T150405.000000000"))

		err = os.Rename(path, backup)
		if err != nil {
			return fmt.Errorf("back up %s file: %w", kind, err)
		}

		slog.Info("backed up existing file",
			slog.String("type", kind),
			slog.String("path", backup),
		)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s file: %w", kind, err)
	}

	slog.Info("wrote default file",
		slog.String("type", kind),
		slog.String("path", path),
	)

	return nil
}

func checkRegular(path string, info fs.FileInfo) error {
	switch {
	case info.IsDir():
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	return nil
}
