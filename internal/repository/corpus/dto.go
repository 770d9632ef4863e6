package corpus

import (
	"time"

	domcorpus "github.com/kailas-cloud/grounder/internal/domain/corpus"
)

// passageDTO is one passages.jsonl row. Canonical keys plus the legacy alias
// spellings older ingests produced; alias resolution lives here and nowhere
// else, the domain only ever sees canonical values.
type passageDTO struct {
	DocumentID string   `json:"document_id,omitempty"`
	DocID      string   `json:"doc_id,omitempty"` // legacy alias
	PassageID  string   `json:"passage_id,omitempty"`
	ChunkID    string   `json:"chunk_id,omitempty"` // legacy alias
	ID         string   `json:"id,omitempty"`       // legacy alias
	Title      string   `json:"title,omitempty"`
	URL        string   `json:"url,omitempty"`
	Source     string   `json:"source,omitempty"` // legacy alias for url
	Date       string   `json:"date,omitempty"`
	County     string   `json:"county,omitempty"`
	Topics     []string `json:"topics,omitempty"`
	Topic      string   `json:"topic,omitempty"` // legacy alias, single value
	Text       string   `json:"text"`
}

func (d *passageDTO) documentID() string {
	if d.DocumentID != "" {
		return d.DocumentID
	}
	return d.DocID
}

func (d *passageDTO) passageID() string {
	if d.PassageID != "" {
		return d.PassageID
	}
	if d.ChunkID != "" {
		return d.ChunkID
	}
	return d.ID
}

func (d *passageDTO) url() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Source
}

func (d *passageDTO) topics() []string {
	if len(d.Topics) > 0 {
		return d.Topics
	}
	if d.Topic != "" {
		return []string{d.Topic}
	}
	return nil
}

// manifestDTO is the manifest.json shape.
type manifestDTO struct {
	CreatedAt    time.Time `json:"created_at"`
	Count        int       `json:"count"`
	Dim          int       `json:"dim"`
	EmbedModel   string    `json:"embed_model"`
	PassagesFile string    `json:"passages_file,omitempty"`
	VectorsFile  string    `json:"vectors_file,omitempty"`
}

func (d *manifestDTO) toDomain() domcorpus.Manifest {
	return domcorpus.Reconstruct(d.CreatedAt, d.Count, d.Dim, d.EmbedModel, d.PassagesFile, d.VectorsFile)
}

func manifestToDTO(m domcorpus.Manifest) manifestDTO {
	return manifestDTO{
		CreatedAt:    m.CreatedAt(),
		Count:        m.Count(),
		Dim:          m.Dim(),
		EmbedModel:   m.EmbedModel(),
		PassagesFile: m.PassagesFileName(),
		VectorsFile:  m.VectorsFileName(),
	}
}

// vectorRow is one vectors.parquet row, aligned 1:1 with passages.jsonl.
type vectorRow struct {
	PassageID string    `parquet:"passage_id"`
	Vector    []float32 `parquet:"vector"`
}
