// Package jsonfile persists pipeline artifacts as JSON files, one file per
// artifact, validated against embedded JSON schemas on write and read.
package jsonfile

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ResultStore = (*Store)(nil)

//go:embed schemas/*.json
var schemaFS embed.FS

// Artifact subdirectories under the data dir.
const (
	MetadataDir = "metadata"
	ResultsDir  = "results"
)

const (
	schemaResult         = "result.schema.json"
	schemaClassification = "classification.schema.json"
	schemaMetadata       = "metadata.schema.json"
)

// resultTimeFormat names result artifacts, e.g. result_20240501_120000_1.json.
const resultTimeFormat = "20060102_150405"

// Store writes artifacts under a data directory.
type Store struct {
	dataDir string
	schemas map[string]*jsonschema.Schema
	seq     atomic.Int64
}

// NewStore compiles the artifact schemas and returns a store rooted at dataDir.
func NewStore(dataDir string) (*Store, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &Store{dataDir: dataDir, schemas: schemas}, nil
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	names := []string{schemaResult, schemaClassification, schemaMetadata}
	for _, name := range names {
		data, err := fs.ReadFile(schemaFS, "schemas/"+name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}
	return schemas, nil
}

// SaveResult writes a query result as results/result_<timestamp>_<n>.json.
func (s *Store) SaveResult(_ context.Context, result *domain.FinalResult) (string, error) {
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	name := fmt.Sprintf("result_%s_%d.json", ts.Format(resultTimeFormat), s.seq.Add(1))
	path := filepath.Join(s.dataDir, ResultsDir, name)
	if err := s.write(path, schemaResult, result); err != nil {
		return "", err
	}
	return path, nil
}

// LoadResult reads a query result artifact.
func (s *Store) LoadResult(_ context.Context, path string) (*domain.FinalResult, error) {
	var result domain.FinalResult
	if err := s.read(path, schemaResult, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveClassification writes results/classification_<docID>.json.
func (s *Store) SaveClassification(_ context.Context, result *domain.ClassificationResult) (string, error) {
	if result.DocumentID == "" {
		return "", fmt.Errorf("%w: classification has no document id", domain.ErrInvalidInput)
	}
	path := s.classificationPath(result.DocumentID)
	if err := s.write(path, schemaClassification, result); err != nil {
		return "", err
	}
	return path, nil
}

// LoadClassification reads the classification artifact of a document.
func (s *Store) LoadClassification(_ context.Context, docID string) (*domain.ClassificationResult, error) {
	var result domain.ClassificationResult
	if err := s.read(s.classificationPath(docID), schemaClassification, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveMetadata writes metadata/<docID>.json.
func (s *Store) SaveMetadata(_ context.Context, meta *domain.DocumentMetadata) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}
	path := s.metadataPath(meta.ID)
	if err := s.write(path, schemaMetadata, meta); err != nil {
		return "", err
	}
	return path, nil
}

// LoadMetadata reads the metadata of a document.
func (s *Store) LoadMetadata(_ context.Context, docID string) (*domain.DocumentMetadata, error) {
	var meta domain.DocumentMetadata
	if err := s.read(s.metadataPath(docID), schemaMetadata, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) classificationPath(docID string) string {
	return filepath.Join(s.dataDir, ResultsDir, "classification_"+filepath.Base(docID)+".json")
}

func (s *Store) metadataPath(docID string) string {
	return filepath.Join(s.dataDir, MetadataDir, filepath.Base(docID)+".json")
}

// write validates v against the schema and writes it atomically.
func (s *Store) write(path, schema string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := s.validate(schema, data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// read loads path, validates it against the schema and decodes it into v.
func (s *Store) read(path, schema string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", filepath.Base(path), domain.ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := s.validate(schema, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, filepath.Base(path), err)
	}
	return nil
}

func (s *Store) validate(schema string, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.schemas[schema].Validate(doc); err != nil {
		return fmt.Errorf("%w: artifact does not match %s: %v", domain.ErrInvalidInput, schema, err)
	}
	return nil
}
