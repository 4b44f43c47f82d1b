package env

import (
	"os"
	"path/filepath"
)

// WorkDir is the per-user directory fastobuild keeps its state in.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".fastobuild"), nil
}

// DefaultBuildDir is where sources are fetched and built when no build
// directory is configured. The directory itself is not created: a session
// recreates it anyway.
func DefaultBuildDir() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "build"), nil
}

// ConfigDir holds fastobuild.toml. It is created with mode 0700.
func ConfigDir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(userConfigDir, "fastobuild")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
