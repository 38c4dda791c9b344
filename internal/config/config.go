// Package config resolves where the photo library lives and how the preview behaves.
// Values come from the environment (optionally seeded by a .env file) with defaults.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName = "magnify"

	DefaultIndexFile    = "magnify_gallery.db"
	DefaultPhotosSubDir = "photos"
)

const (
	defaultWindowRadius   = 1
	defaultMaxLogMessages = 100
)

// Config holds the resolved, absolute locations of both stores plus UI tuning.
type Config struct {
	// root of all application-private data
	DataDir string

	// bbolt file holding the metadata index
	IndexPath string

	// directory holding one <id>.jpg per photo
	PhotosDir string

	// neighbours materialised on each side of the active photo
	WindowRadius int

	MaxLogMessages int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// defaultDataDir mirrors where desktop apps keep private state: the user config
// dir, or the working directory when that cannot be determined.
func defaultDataDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: Could not get user config dir: %v. Using current dir.", err)
		return "."
	}
	return filepath.Join(configDir, AppName)
}

// LoadEnvFile loads a .env file from the working directory if there is one.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
}

// LoadConfig builds a Config from the environment. dataDirOverride, when not
// empty, wins over MAGNIFY_DATA_DIR.
func LoadConfig(dataDirOverride string) (Config, error) {
	dataDir := dataDirOverride
	if dataDir == "" {
		dataDir = getEnvOrDefault("MAGNIFY_DATA_DIR", defaultDataDir())
	}
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", dataDir, err)
	}

	indexFile := getEnvOrDefault("MAGNIFY_INDEX_FILE", DefaultIndexFile)
	indexPath := indexFile
	if !filepath.IsAbs(indexPath) {
		indexPath = filepath.Join(absData, indexFile)
	}

	photosSubDir := getEnvOrDefault("MAGNIFY_PHOTOS_SUBDIR", DefaultPhotosSubDir)
	photosDir := filepath.Join(absData, photosSubDir)

	return Config{
		DataDir:        absData,
		IndexPath:      indexPath,
		PhotosDir:      photosDir,
		WindowRadius:   getEnvIntOrDefault("MAGNIFY_WINDOW_RADIUS", defaultWindowRadius),
		MaxLogMessages: getEnvIntOrDefault("MAGNIFY_MAX_LOG_MESSAGES", defaultMaxLogMessages),
	}, nil
}

// EnsureDirs creates the data and photo directories with private permissions.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, filepath.Dir(c.IndexPath), c.PhotosDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
