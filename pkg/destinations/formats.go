package destinations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFormat represents the supported destination file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // JSON array of records
	FormatBinary             // checksummed msgpack index
)

// ErrUnknownFormat is returned when a file cannot be matched to a format.
var ErrUnknownFormat = errors.New("unknown destination file format")

// FormatInfo contains metadata about a destination file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Destination List",
		Extensions:  []string{".json"},
		MinSize:     2, // "[]"
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Destination Index",
		Extensions:  []string{".idx"},
		MinSize:     4,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat picks a format from the file extension and checks the file is large enough for it.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := validateSize(filename, info); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

func validateSize(filename string, info FormatInfo) error {
	stat, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}
	if stat.Size() < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, stat.Size(), info.Description, info.MinSize)
	}
	return nil
}

// SupportedExtensions lists every extension Load understands.
func SupportedExtensions() []string {
	return []string{".idx", ".json"}
}
