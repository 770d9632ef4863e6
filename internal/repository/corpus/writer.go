package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	domcorpus "github.com/kailas-cloud/grounder/internal/domain/corpus"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

// Write produces passages.jsonl, vectors.parquet and manifest.json under dir,
// mirroring what the external ingestion pipeline emits. It exists for fixtures
// and example programs; production corpora arrive pre-built.
func Write(dir string, records []passage.Record, embedModel string) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to write")
	}
	dim := records[0].Dim()
	for i := range records {
		if records[i].Dim() != dim {
			return fmt.Errorf("record %d has dim %d, want %d", i, records[i].Dim(), dim)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}

	if err := writePassages(filepath.Join(dir, domcorpus.PassagesFile), records); err != nil {
		return err
	}
	if err := writeVectors(filepath.Join(dir, domcorpus.VectorsFile), records); err != nil {
		return err
	}
	return writeManifest(filepath.Join(dir, domcorpus.ManifestFile), len(records), dim, embedModel)
}

func writePassages(path string, records []passage.Record) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create passages: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		r := &records[i]
		date := ""
		if d, ok := r.Date(); ok {
			date = d.Format(time.DateOnly)
		}
		dto := passageDTO{
			DocumentID: r.DocumentID(),
			PassageID:  r.PassageID(),
			Title:      r.Title(),
			URL:        r.URL(),
			Date:       date,
			County:     r.County(),
			Topics:     r.Topics(),
			Text:       r.Text(),
		}
		if err := enc.Encode(&dto); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode passage %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush passages: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close passages: %w", err)
	}
	return nil
}

func writeVectors(path string, records []passage.Record) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create vectors: %w", err)
	}

	rows := make([]vectorRow, len(records))
	for i := range records {
		rows[i] = vectorRow{
			PassageID: records[i].PassageID(),
			Vector:    records[i].Embedding(),
		}
	}

	w := parquet.NewGenericWriter[vectorRow](f)
	if _, err := w.Write(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close vector writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close vectors: %w", err)
	}
	return nil
}

func writeManifest(path string, count, dim int, embedModel string) error {
	m, err := domcorpus.New(time.Now().UTC(), count, dim, embedModel)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}

	dto := manifestToDTO(m)
	data, err := json.MarshalIndent(&dto, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
