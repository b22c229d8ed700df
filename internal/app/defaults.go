package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetDefaults returns application default paths, checking environment
// variables first. Environment variables:
//   - LHIST_CONFIG_PATH: config file location (default: ~/.config/lhist.toml)
//   - LHIST_HOME: base directory for lhist data (default: ~/.local/share/lhist)
//   - LHIST_HISTORY_ROOT: the editor's local-history store (default: the
//     platform's Code User/History location)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	historyRoot, err := getHistoryRoot()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"history_root": historyRoot,
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("LHIST_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "lhist.toml"), nil
}

func getBaseDir() (string, error) {
	if path := os.Getenv("LHIST_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "lhist"), nil
}

// getHistoryRoot returns the default location of the editor's local-history
// store for the current platform. The store location belongs to the editor,
// not to lhist; this default only saves the user a config entry.
func getHistoryRoot() (string, error) {
	if path := os.Getenv("LHIST_HISTORY_ROOT"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Code", "User", "History"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Code", "User", "History"), nil
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "Code", "User", "History"), nil
	default:
		return filepath.Join(homeDir, ".config", "Code", "User", "History"), nil
	}
}
