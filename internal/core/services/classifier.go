package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Classifier scores a document against a catalog of type profiles with
// keyword, semantic and pattern signals.
type Classifier struct {
	profiles []domain.DocumentTypeProfile
	patterns [][]*regexp.Regexp
	embedder driven.EmbeddingService
	weights  domain.ClassifierSettings
}

// NewClassifier creates a classifier. Profile order is significant: ties
// go to the earlier profile. A nil embedder zeroes the semantic signal.
func NewClassifier(
	profiles []domain.DocumentTypeProfile,
	embedder driven.EmbeddingService,
	weights domain.ClassifierSettings,
) *Classifier {
	compiled := make([][]*regexp.Regexp, len(profiles))
	for i, p := range profiles {
		compiled[i] = make([]*regexp.Regexp, len(p.Patterns))
		for j, pat := range p.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				logger.Warn("classifier: pattern %q of %s does not compile: %v", pat, p.Name, err)
				continue
			}
			compiled[i][j] = re
		}
	}

	return &Classifier{
		profiles: profiles,
		patterns: compiled,
		embedder: embedder,
		weights:  weights,
	}
}

// Classify returns the best matching document type for the chunks.
func (c *Classifier) Classify(ctx context.Context, chunks []string, imageCount int) (*domain.ClassificationResult, error) {
	if len(c.profiles) == 0 {
		return nil, fmt.Errorf("%w: empty document type catalog", domain.ErrInvalidConfiguration)
	}

	logger.Section("Classification")

	joined := strings.Join(chunks, " ")
	text := strings.ToLower(joined)

	semantic, err := c.semanticScores(ctx, chunks)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(c.profiles))
	best, bestScore, total := 0, math.Inf(-1), 0.0
	for i, p := range c.profiles {
		kw := keywordScore(text, p.Keywords)
		pat := patternScore(text, c.patterns[i])
		score := c.weights.KeywordWeight*kw + c.weights.SemanticWeight*semantic[i] + c.weights.PatternWeight*pat

		logger.Debug("%s: keyword=%.3f semantic=%.3f pattern=%.3f score=%.3f", p.Name, kw, semantic[i], pat, score)

		scores[p.Name] = score
		total += score
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	probs := make(map[string]float64, len(c.profiles))
	for name, s := range scores {
		if total > 0 {
			probs[name] = s / total
		} else {
			probs[name] = 0
		}
	}

	winner := c.profiles[best]
	logger.Info("Classified as %s (score %.3f)", winner.Name, bestScore)

	return &domain.ClassificationResult{
		DocumentType:    winner.Name,
		ConfidenceScore: math.Min(bestScore, 1),
		AllScores:       scores,
		Probabilities:   probs,
		Description:     winner.Description,
		TextLength:      len([]rune(joined)),
		ImageCount:      imageCount,
	}, nil
}

// semanticScores embeds each profile's keyword list and every chunk in
// one batch and returns the mean cosine per profile.
func (c *Classifier) semanticScores(ctx context.Context, chunks []string) ([]float64, error) {
	scores := make([]float64, len(c.profiles))
	if c.embedder == nil || len(chunks) == 0 {
		return scores, nil
	}

	texts := make([]string, 0, len(c.profiles)+len(chunks))
	for _, p := range c.profiles {
		texts = append(texts, strings.Join(p.Keywords, " "))
	}
	texts = append(texts, chunks...)

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed classification text: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrInvalidInput, len(vectors), len(texts))
	}

	chunkVecs := vectors[len(c.profiles):]
	for i := range c.profiles {
		var sum float64
		for _, cv := range chunkVecs {
			sum += cosine(vectors[i], cv)
		}
		// Negative similarity carries no evidence for a type.
		scores[i] = math.Max(0, sum/float64(len(chunkVecs)))
	}
	return scores, nil
}

func keywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	found := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

// patternScore counts invalid patterns in the denominator as misses.
func patternScore(text string, patterns []*regexp.Regexp) float64 {
	if len(patterns) == 0 {
		return 0
	}
	found := 0
	for _, re := range patterns {
		if re != nil && re.MatchString(text) {
			found++
		}
	}
	return float64(found) / float64(len(patterns))
}
