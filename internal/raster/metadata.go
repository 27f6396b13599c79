package raster

import (
	"errors"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"
)

// Metadata holds the EXIF fields worth showing about a photograph.
type Metadata struct {
	Tags        map[string]string
	Make        string
	Model       string
	Orientation string
	Taken       string
	HasGPS      bool
}

// ReadMetadata extracts EXIF metadata from encoded image bytes. Images
// without EXIF yield empty metadata and no error.
func ReadMetadata(data []byte) (Metadata, error) {
	md := Metadata{Tags: make(map[string]string)}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return md, nil
		}
		return md, fmt.Errorf("searching exif: %w", err)
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return md, fmt.Errorf("parsing exif: %w", err)
	}

	for _, entry := range entries {
		md.Tags[entry.TagName] = entry.Formatted

		switch entry.TagName {
		case "Make":
			md.Make = entry.Formatted
		case "Model":
			md.Model = entry.Formatted
		case "Orientation":
			md.Orientation = entry.Formatted
		case "DateTimeOriginal":
			md.Taken = entry.Formatted
		case "DateTime":
			if md.Taken == "" {
				md.Taken = entry.Formatted
			}
		case "GPSLatitude", "GPSLongitude":
			md.HasGPS = true
		}
	}

	return md, nil
}
