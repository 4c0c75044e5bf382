package forms

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

// Stats handles directory statistics operations
type Stats struct {
	extractor *doctext.Extractor
}

// NewStats creates a stats analyzer backed by the given extractor
func NewStats(extractor *doctext.Extractor) *Stats {
	return &Stats{extractor: extractor}
}

// GetDirectoryStats returns statistics about the supported form documents
// in a directory
func (s *Stats) GetDirectoryStats(req FormStatsDirectoryRequest) (*FormStatsDirectoryResult, error) {
	directory := req.Directory
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	var totalFiles int
	var totalSize int64
	var largestFile int64
	var largestFileName string
	var smallestFile int64 = int64(^uint64(0) >> 1) // Max int64
	var smallestFileName string
	countsByFormat := make(map[string]int)

	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Continue despite errors
		}

		if info.IsDir() {
			return nil
		}

		if !doctext.IsSupportedFile(info.Name()) {
			return nil
		}

		// Quick validation without opening the file
		if s.extractor.ValidateFileInfo(path, info) != nil {
			return nil
		}

		totalFiles++
		totalSize += info.Size()

		if format, err := doctext.DetectFormat(path); err == nil {
			countsByFormat[string(format)]++
		}

		if info.Size() > largestFile {
			largestFile = info.Size()
			largestFileName = info.Name()
		}

		if info.Size() < smallestFile {
			smallestFile = info.Size()
			smallestFileName = info.Name()
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	var averageSize int64
	if totalFiles > 0 {
		averageSize = totalSize / int64(totalFiles)
	}

	if totalFiles == 0 {
		smallestFile = 0
		countsByFormat = nil
	}

	result := &FormStatsDirectoryResult{
		Directory:        directory,
		TotalFiles:       totalFiles,
		TotalSize:        totalSize,
		CountsByFormat:   countsByFormat,
		LargestFileSize:  largestFile,
		LargestFileName:  largestFileName,
		SmallestFileSize: smallestFile,
		SmallestFileName: smallestFileName,
		AverageFileSize:  averageSize,
	}

	return result, nil
}
