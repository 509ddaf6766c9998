package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	metas          map[string]*domain.DocumentMetadata
	classification *domain.ClassificationResult
	result         *domain.FinalResult

	processErr error
	loadErr    error

	processed  []string
	loadCalls  int
	lastQuery  string
	lastOpts   driving.QueryOptions
	classified []string
}

func (m *mockPipelineService) ProcessDocument(_ context.Context, path string) (*domain.DocumentMetadata, error) {
	m.processed = append(m.processed, path)
	if m.processErr != nil {
		return nil, m.processErr
	}
	if meta, ok := m.metas[path]; ok {
		return meta, nil
	}
	return &domain.DocumentMetadata{ID: "doc-x", Filename: path, PageCount: 1}, nil
}

func (m *mockPipelineService) ClassifyDocument(_ context.Context, docID string) (*domain.ClassificationResult, error) {
	m.classified = append(m.classified, docID)
	if m.classification == nil {
		return nil, domain.ErrNotFound
	}
	return m.classification, nil
}

func (m *mockPipelineService) Query(_ context.Context, q string, opts driving.QueryOptions) (*domain.FinalResult, error) {
	m.lastQuery = q
	m.lastOpts = opts
	if m.result == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	return m.result, nil
}

func (m *mockPipelineService) LoadIndices(context.Context) error {
	m.loadCalls++
	return m.loadErr
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs           []domain.DocumentRecord
	meta           *domain.DocumentMetadata
	classification *domain.ClassificationResult
	results        []domain.ResultRecord

	exportData  string
	exportCount int
	exportErr   error
	lastDocID   string
}

func (m *mockDocumentService) List(context.Context) ([]domain.DocumentRecord, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, docID string) (*domain.DocumentRecord, error) {
	for i := range m.docs {
		if m.docs[i].ID == docID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Metadata(_ context.Context, docID string) (*domain.DocumentMetadata, error) {
	if m.meta == nil || m.meta.ID != docID {
		return nil, domain.ErrNotFound
	}
	return m.meta, nil
}

func (m *mockDocumentService) Classification(context.Context, string) (*domain.ClassificationResult, error) {
	if m.classification == nil {
		return nil, domain.ErrNotFound
	}
	return m.classification, nil
}

func (m *mockDocumentService) Results(_ context.Context, docID string) ([]domain.ResultRecord, error) {
	m.lastDocID = docID
	return m.results, nil
}

func (m *mockDocumentService) Export(_ context.Context, docID string, w io.Writer) (int, error) {
	m.lastDocID = docID
	if m.exportErr != nil {
		return 0, m.exportErr
	}
	if _, err := io.WriteString(w, m.exportData); err != nil {
		return 0, err
	}
	return m.exportCount, nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.Settings
	validateErr error
	checkErr    error
	setErr      error
	set         map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"models.text_encoder", "embeddings.chunk_size"}
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) Check(context.Context) error {
	return m.checkErr
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// setTestServices swaps the package services for the duration of a test.
func setTestServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// executeCommand runs rootCmd with args and returns combined output.
// Flags of every command are reset first so tests do not leak state.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
