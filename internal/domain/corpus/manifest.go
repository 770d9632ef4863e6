// Package corpus holds corpus-level metadata value objects.
package corpus

import (
	"fmt"
	"time"
)

// Default file names within a corpus directory.
const (
	PassagesFile = "passages.jsonl"
	VectorsFile  = "vectors.parquet"
	ManifestFile = "manifest.json"
)

// Manifest describes a corpus as written by ingestion (immutable value object).
// It is optional on load; when present, count and dim must agree with the
// actual files.
type Manifest struct {
	createdAt    time.Time
	count        int
	dim          int
	embedModel   string
	passagesFile string
	vectorsFile  string
}

// New validates and creates a Manifest.
func New(createdAt time.Time, count, dim int, embedModel string) (Manifest, error) {
	if count < 0 {
		return Manifest{}, fmt.Errorf("count must be non-negative")
	}
	if dim <= 0 {
		return Manifest{}, fmt.Errorf("vector dimension must be positive")
	}
	if embedModel == "" {
		return Manifest{}, fmt.Errorf("embedding model is required")
	}
	return Manifest{
		createdAt:    createdAt,
		count:        count,
		dim:          dim,
		embedModel:   embedModel,
		passagesFile: PassagesFile,
		vectorsFile:  VectorsFile,
	}, nil
}

// Reconstruct creates a Manifest without validation (storage hydration).
func Reconstruct(createdAt time.Time, count, dim int, embedModel, passagesFile, vectorsFile string) Manifest {
	if passagesFile == "" {
		passagesFile = PassagesFile
	}
	if vectorsFile == "" {
		vectorsFile = VectorsFile
	}
	return Manifest{
		createdAt:    createdAt,
		count:        count,
		dim:          dim,
		embedModel:   embedModel,
		passagesFile: passagesFile,
		vectorsFile:  vectorsFile,
	}
}

// CreatedAt returns the ingestion timestamp.
func (m Manifest) CreatedAt() time.Time { return m.createdAt }

// Count returns the number of passages.
func (m Manifest) Count() int { return m.count }

// Dim returns the embedding dimensionality.
func (m Manifest) Dim() int { return m.dim }

// EmbedModel returns the model that produced the corpus vectors.
func (m Manifest) EmbedModel() string { return m.embedModel }

// PassagesFileName returns the metadata file name within the corpus dir.
func (m Manifest) PassagesFileName() string { return m.passagesFile }

// VectorsFileName returns the vector file name within the corpus dir.
func (m Manifest) VectorsFileName() string { return m.vectorsFile }
