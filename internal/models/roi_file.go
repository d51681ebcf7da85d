package models

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const roiFileVersion = 1

type roiFile struct {
	Version int   `yaml:"version"`
	ROIs    []ROI `yaml:"rois"`
}

// WriteROIs encodes rois as a versioned YAML document.
func WriteROIs(w io.Writer, rois []ROI) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(roiFile{Version: roiFileVersion, ROIs: rois}); err != nil {
		return fmt.Errorf("encode rois: %w", err)
	}
	return enc.Close()
}

// ReadROIs decodes and validates a YAML ROI document. Entries are returned in
// file order; entries without an ID get a fresh one. The first invalid entry
// fails the whole read.
func ReadROIs(r io.Reader) ([]ROI, error) {
	var doc roiFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rois: %w", err)
	}
	if doc.Version != roiFileVersion {
		return nil, fmt.Errorf("unsupported roi file version %d", doc.Version)
	}
	for i, roi := range doc.ROIs {
		if roi.ID == "" {
			doc.ROIs[i].ID = uuid.NewString()
		}
		if err := roi.Validate(); err != nil {
			return nil, fmt.Errorf("roi %d: %w", i, err)
		}
	}
	return doc.ROIs, nil
}

func SaveROIFile(path string, rois []ROI) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roi file: %w", err)
	}
	if err := WriteROIs(f, rois); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadROIFile(path string) ([]ROI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roi file: %w", err)
	}
	defer f.Close()
	return ReadROIs(f)
}
