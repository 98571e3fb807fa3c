package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"podium/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	ProjectionFullscreen *bool   `yaml:"projection_fullscreen"`
	ProjectionOpacity    float64 `yaml:"projection_opacity"`
	NotifyOnComplete     *bool   `yaml:"notify_on_complete"`
	SampleIntervalMillis int     `yaml:"sample_interval_ms"`
	StorePath            string  `yaml:"store_path,omitempty"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from the YAML file at configPath.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to the YAML file at configPath.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fullscreen := settings.ProjectionFullscreen
	notify := settings.NotifyOnComplete
	fileData := yamlSettings{
		ProjectionFullscreen: &fullscreen,
		ProjectionOpacity:    settings.ProjectionOpacity,
		NotifyOnComplete:     &notify,
		SampleIntervalMillis: int(settings.SampleInterval / time.Millisecond),
		StorePath:            settings.StorePath,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.ProjectionFullscreen != nil {
		settings.ProjectionFullscreen = *fileData.ProjectionFullscreen
	}
	if fileData.NotifyOnComplete != nil {
		settings.NotifyOnComplete = *fileData.NotifyOnComplete
	}

	if fileData.ProjectionOpacity >= 0.7 && fileData.ProjectionOpacity <= 1 {
		settings.ProjectionOpacity = fileData.ProjectionOpacity
	}
	if fileData.SampleIntervalMillis >= 50 && fileData.SampleIntervalMillis <= 1000 {
		settings.SampleInterval = time.Duration(fileData.SampleIntervalMillis) * time.Millisecond
	}

	settings.StorePath = fileData.StorePath
}
