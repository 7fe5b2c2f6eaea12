package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one rendered image in the output manifest.
type ManifestEntry struct {
	Name       string  `json:"name"`
	Debug      string  `json:"debug"`
	DebugMode  int     `json:"debug_mode"`
	SunTransit float64 `json:"sun_transit"`
	Image      string  `json:"image"`
	Exposure   float64 `json:"exposure"`
	Luminance  float64 `json:"metered_luminance"`
}

// WriteManifest writes the successful results as manifest.json.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:       r.Job.Name,
			Debug:      r.Job.Debug.String(),
			DebugMode:  int(r.Job.Debug),
			SunTransit: r.Job.Transit,
			Image:      r.Image,
			Exposure:   r.Exposure,
			Luminance:  r.Luminance,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
