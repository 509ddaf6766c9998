package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docsight/internal/catalog"
	"github.com/custodia-labs/docsight/internal/core/domain"
)

func newTestClassifier() *Classifier {
	return NewClassifier(catalog.DocumentTypes(), hashing.NewEmbeddingService(384), domain.DefaultSettings().Classifier)
}

func TestClassifier_Invoice(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), []string{
		"Statement of charges for services rendered",
		"Invoice Number: INV-2024-017 Bill To: Harbor Logistics Ltd Total: Rs. 4,500.00",
		"Payment is due within thirty days. Thank you for your business.",
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, catalog.TypeInvoice, result.DocumentType)
	assert.Equal(t, "Billing document for services/goods", result.Description)
	assert.Equal(t, 3, result.ImageCount)
	assert.Greater(t, result.TextLength, 0)
	assert.LessOrEqual(t, result.ConfidenceScore, 1.0)
	assert.Len(t, result.AllScores, 5)
}

func TestClassifier_ClaimForm(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), []string{
		"Insurance Claim Form. Claimant details. Date of loss: 12/03/2024.",
		"Description of loss: water damage after incident. Claim amount Rs. 50,000.",
		"Declaration and signature of the claimant.",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeClaimForm, result.DocumentType)
}

func TestClassifier_ProbabilitiesSumToOne(t *testing.T) {
	c := newTestClassifier()

	result, err := c.Classify(context.Background(), []string{"policy coverage premium and claim form"}, 0)
	require.NoError(t, err)

	var sum float64
	for _, p := range result.Probabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	var bestName string
	bestScore := -1.0
	for _, p := range catalog.DocumentTypes() {
		if s := result.AllScores[p.Name]; s > bestScore {
			bestName, bestScore = p.Name, s
		}
	}
	assert.Equal(t, bestName, result.DocumentType)
}

func TestClassifier_ZeroScoresGiveZeroProbabilities(t *testing.T) {
	c := NewClassifier(catalog.DocumentTypes(), nil, domain.DefaultSettings().Classifier)

	result, err := c.Classify(context.Background(), nil, 0)
	require.NoError(t, err)

	assert.Equal(t, catalog.TypeClaimForm, result.DocumentType, "ties go to the first profile")
	assert.Zero(t, result.ConfidenceScore)
	for _, p := range result.Probabilities {
		assert.Zero(t, p)
	}
}

func TestClassifier_TieBreakByCatalogOrder(t *testing.T) {
	profiles := []domain.DocumentTypeProfile{
		{Name: "First", Keywords: []string{"alpha"}, Description: "first"},
		{Name: "Second", Keywords: []string{"alpha"}, Description: "second"},
	}
	c := NewClassifier(profiles, nil, domain.ClassifierSettings{KeywordWeight: 1})

	result, err := c.Classify(context.Background(), []string{"alpha"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "First", result.DocumentType)
	assert.InDelta(t, 0.5, result.Probabilities["Second"], 1e-9)
}

func TestClassifier_ConfidenceCapped(t *testing.T) {
	profiles := []domain.DocumentTypeProfile{{Name: "Only", Keywords: []string{"x"}, Patterns: []string{`x`}}}
	c := NewClassifier(profiles, nil, domain.ClassifierSettings{KeywordWeight: 1, PatternWeight: 1})

	result, err := c.Classify(context.Background(), []string{"x"}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.AllScores["Only"], 1e-9)
	assert.Equal(t, 1.0, result.ConfidenceScore)
}

func TestClassifier_InvalidPatternIsMiss(t *testing.T) {
	profiles := []domain.DocumentTypeProfile{{Name: "Broken", Patterns: []string{`(unclosed`, `ok`}}}
	c := NewClassifier(profiles, nil, domain.ClassifierSettings{PatternWeight: 1})

	result, err := c.Classify(context.Background(), []string{"ok"}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.AllScores["Broken"], 1e-9)
}

func TestClassifier_Deterministic(t *testing.T) {
	c := newTestClassifier()
	chunks := []string{"Inspection report by the surveyor", "damage assessment findings"}

	a, err := c.Classify(context.Background(), chunks, 2)
	require.NoError(t, err)
	b, err := c.Classify(context.Background(), chunks, 2)
	require.NoError(t, err)
	assert.Equal(t, a.AllScores, b.AllScores)
	assert.Equal(t, catalog.TypeInspectionReport, a.DocumentType)
}

func TestClassifier_EmbeddingError(t *testing.T) {
	emb := newCountingEmbedder(32)
	emb.err = errors.New("offline")
	c := NewClassifier(catalog.DocumentTypes(), emb, domain.DefaultSettings().Classifier)

	_, err := c.Classify(context.Background(), []string{"text"}, 0)
	assert.Error(t, err)
	assert.Equal(t, int32(1), emb.batches.Load())
}

func TestClassifier_EmptyCatalog(t *testing.T) {
	c := NewClassifier(nil, nil, domain.DefaultSettings().Classifier)
	_, err := c.Classify(context.Background(), []string{"x"}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
