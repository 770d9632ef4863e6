package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	domcorpus "github.com/kailas-cloud/grounder/internal/domain/corpus"
	"github.com/kailas-cloud/grounder/internal/domain/knn"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

// maxLineBytes bounds one passages.jsonl line, comfortably above
// passage.MaxTextLength plus metadata.
const maxLineBytes = 1 << 20

// readCorpusDir reads and cross-validates the corpus files. Nothing is
// published on error; the loader wraps every failure in a CorpusLoadError.
func readCorpusDir(dir string) ([]passage.Record, *knn.Matrix, *domcorpus.Manifest, error) {
	man, err := readManifest(dir)
	if err != nil {
		return nil, nil, nil, err
	}

	dtos, err := readPassages(filepath.Join(dir, domcorpus.PassagesFile))
	if err != nil {
		return nil, nil, nil, err
	}

	matrix, ids, err := readVectors(filepath.Join(dir, domcorpus.VectorsFile))
	if err != nil {
		return nil, nil, nil, err
	}

	if matrix.Rows() != len(dtos) {
		return nil, nil, nil, fmt.Errorf(
			"row count mismatch: %d passages, %d vectors", len(dtos), matrix.Rows(),
		)
	}

	records := make([]passage.Record, len(dtos))
	for i := range dtos {
		d := &dtos[i]
		pid := d.passageID()
		if pid == "" {
			return nil, nil, nil, fmt.Errorf("%s row %d: passage id is required", domcorpus.PassagesFile, i+1)
		}
		if d.Text == "" {
			return nil, nil, nil, fmt.Errorf("%s row %d: text is required", domcorpus.PassagesFile, i+1)
		}
		if ids[i] != pid {
			return nil, nil, nil, fmt.Errorf(
				"row %d: passage id mismatch between files: %q in passages, %q in vectors", i+1, pid, ids[i],
			)
		}
		// Embeddings alias the matrix rows: stored once, never copied.
		records[i] = passage.Reconstruct(
			d.documentID(), pid, matrix.Row(i),
			d.Title, d.url(), passage.ParseDate(d.Date), d.County,
			d.topics(), d.Text,
		)
	}

	if man != nil {
		if man.Count() != len(records) {
			return nil, nil, nil, fmt.Errorf(
				"manifest count %d disagrees with %d passages", man.Count(), len(records),
			)
		}
		// An empty corpus has no vector rows to infer a dimension from, so
		// the manifest dim is only checkable against actual rows.
		if matrix.Rows() > 0 && man.Dim() != matrix.Dim() {
			return nil, nil, nil, fmt.Errorf(
				"manifest dim %d disagrees with vector dim %d", man.Dim(), matrix.Dim(),
			)
		}
	}

	return records, matrix, man, nil
}

// readManifest returns (nil, nil) when the corpus dir carries no manifest.
func readManifest(dir string) (*domcorpus.Manifest, error) {
	path := filepath.Join(dir, domcorpus.ManifestFile)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var dto manifestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m := dto.toDomain()
	return &m, nil
}

func readPassages(path string) ([]passageDTO, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open passages: %w", err)
	}
	defer func() { _ = f.Close() }()

	var dtos []passageDTO
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var d passageDTO
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("passages line %d: %w", line, err)
		}
		dtos = append(dtos, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan passages: %w", err)
	}
	return dtos, nil
}

// readVectors reads vectors.parquet into a dense matrix, returning the
// row-aligned passage ids for the cross-file check. A row whose vector length
// differs from the first row's rejects the whole read.
func readVectors(path string) (*knn.Matrix, []string, error) {
	h, err := openParquet(path)
	if err != nil {
		return nil, nil, err
	}
	defer h.Close()

	idCol, vecCol := resolveVectorColumns(h.pf)
	if idCol < 0 || vecCol < 0 {
		return nil, nil, fmt.Errorf("vectors parquet: passage_id/vector columns not found")
	}

	total := int(h.pf.NumRows())
	if total == 0 {
		// Zero rows is a valid empty corpus, not a malformed one.
		m, err := knn.NewMatrix(0, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("vectors: %w", err)
		}
		return m, nil, nil
	}

	ids := make([]string, 0, total)
	var matrix *knn.Matrix
	row := 0

	for _, rg := range h.pf.RowGroups() {
		rows := parquet.NewRowGroupReader(rg)
		buf := make([]parquet.Row, 256)

		for {
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				id, vec := rowToVector(buf[i], idCol, vecCol)
				if matrix == nil {
					if len(vec) == 0 {
						return nil, nil, fmt.Errorf("vectors row %d: empty vector", row+1)
					}
					matrix, err = knn.NewMatrix(total, len(vec))
					if err != nil {
						return nil, nil, fmt.Errorf("vectors: %w", err)
					}
				}
				if err := matrix.SetRow(row, vec); err != nil {
					return nil, nil, fmt.Errorf("vectors: %w", err)
				}
				ids = append(ids, id)
				row++
			}

			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, nil, fmt.Errorf("read vector rows: %w", readErr)
			}
		}
	}

	if row != total {
		return nil, nil, fmt.Errorf("vectors parquet: read %d rows, file declares %d", row, total)
	}
	return matrix, ids, nil
}

// rowToVector extracts one (passage_id, vector) pair from a generic parquet row.
func rowToVector(row parquet.Row, idCol, vecCol int) (string, []float32) {
	var id string
	var vec []float32
	for _, v := range row {
		switch v.Column() {
		case idCol:
			id = v.String()
		case vecCol:
			if !v.IsNull() {
				vec = append(vec, v.Float())
			}
		}
	}
	return id, vec
}

// resolveVectorColumns finds leaf-level column indexes by name.
func resolveVectorColumns(pf *parquet.File) (idCol, vecCol int) {
	idCol, vecCol = -1, -1
	for i, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			continue
		}
		switch path[0] {
		case "passage_id":
			idCol = i
		case "vector":
			vecCol = i
		}
	}
	return idCol, vecCol
}

// parquetHandle wraps parquet.File + underlying os.File for proper cleanup.
type parquetHandle struct {
	pf   *parquet.File
	file *os.File
}

func (h *parquetHandle) Close() {
	_ = h.file.Close()
}

func openParquet(path string) (*parquetHandle, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open vectors: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat vectors: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &parquetHandle{pf: pf, file: f}, nil
}
