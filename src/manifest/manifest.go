package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"imgoptimizer/src/config"
)

// TimeFormat is ISO-8601 in UTC with millisecond precision
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Record is the JSON summary written next to the optimized images
type Record struct {
	GeneratedAt         string  `json:"generated_at"`
	TotalFilesOptimized int     `json:"total_files_optimized"`
	Products            []Entry `json:"products"`
	Logos               []Entry `json:"logos"`
	NextJSUsage         Usage   `json:"next_js_usage"`
}

// Entry pairs a source file with its optimized path relative to the output root
type Entry struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Name      string `json:"name"`
}

type Usage struct {
	Example string `json:"example"`
}

// Build creates the manifest from the configured descriptors. Entries are
// listed whether or not their conversion succeeded.
func Build(cfg *config.Config, now time.Time) *Record {
	return &Record{
		GeneratedAt:         now.UTC().Format(TimeFormat),
		TotalFilesOptimized: cfg.TotalFiles(),
		Products:            entries("products", cfg.ProductFiles),
		Logos:               entries("logos", cfg.LogoFiles),
		NextJSUsage:         Usage{Example: cfg.Manifest.UsageExample},
	}
}

func entries(dir string, files []config.FileConfig) []Entry {
	list := make([]Entry, 0, len(files))
	for _, f := range files {
		list = append(list, Entry{
			Original:  f.Input,
			Optimized: dir + "/" + f.Output,
			Name:      f.Name,
		})
	}
	return list
}

// Write stores the record as indented JSON, replacing any existing file.
// The usage example is JSX, so HTML characters are written unescaped.
func Write(filePath string, record *Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// Read parses a manifest previously written by Write
func Read(filePath string) (*Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &record, nil
}
