package application

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options are the report presentation settings: env defaults with an
// optional YAML overlay (REPORT_CONFIG).
type Options struct {
	Title            string
	FilenameStem     string
	Timezone         string
	Padding          time.Duration
	SensorTypeLabels map[int]string
}

// overlay is the YAML shape of the options file. Padding is a duration
// string ("90m", "2h").
type overlay struct {
	Title            string         `yaml:"title"`
	FilenameStem     string         `yaml:"filename_stem"`
	Timezone         string         `yaml:"timezone"`
	Padding          string         `yaml:"padding"`
	SensorTypeLabels map[int]string `yaml:"sensor_type_labels"`
}

// LoadOptions builds report options from env defaults, then applies the
// YAML overlay file named by REPORT_CONFIG when set.
func LoadOptions() (Options, error) {
	opts := Options{
		Title:        getenvDefault("REPORT_TITLE", "Alert Report"),
		FilenameStem: getenvDefault("REPORT_FILENAME_STEM", "alert_report"),
		Timezone:     getenvDefault("REPORT_TIMEZONE", "UTC"),
		Padding:      getenvDuration("REPORT_PADDING", time.Hour),
	}

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return opts, err
		}
		var file overlay
		if err := yaml.Unmarshal(data, &file); err != nil {
			return opts, err
		}
		if file.Title != "" {
			opts.Title = file.Title
		}
		if file.FilenameStem != "" {
			opts.FilenameStem = file.FilenameStem
		}
		if file.Timezone != "" {
			opts.Timezone = file.Timezone
		}
		if file.Padding != "" {
			parsed, err := time.ParseDuration(file.Padding)
			if err != nil {
				return opts, fmt.Errorf("report config: padding: %w", err)
			}
			opts.Padding = parsed
		}
		if len(file.SensorTypeLabels) > 0 {
			opts.SensorTypeLabels = file.SensorTypeLabels
		}
	}

	if opts.Padding <= 0 {
		opts.Padding = time.Hour
	}
	return opts, nil
}

// Location resolves the configured display timezone.
func (o Options) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report config: timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
