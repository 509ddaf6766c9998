package services

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Fallback line bounds.
const (
	nameLineMin     = 5
	nameLineMax     = 60
	nameLineWords   = 4
	longestLineMin  = 20
	evidenceTopText = 3
)

// strategy is one way of finding a field value. ok is false when the
// strategy found nothing acceptable.
type strategy func(text string) (value string, confidence float64, kind string, ok bool)

// fieldPlan is a field with its ordered strategies.
type fieldPlan struct {
	spec       domain.FieldSpec
	strategies []strategy
}

// FieldExtractor pulls critical field values out of fused evidence with
// ordered regex strategies and heuristic fallbacks.
type FieldExtractor struct {
	plans    []fieldPlan
	settings domain.ExtractionSettings
}

// NewFieldExtractor compiles the field catalog. Patterns are compiled
// case-insensitive and multi-line; a pattern that does not compile never
// matches.
func NewFieldExtractor(fields []domain.FieldSpec, settings domain.ExtractionSettings) *FieldExtractor {
	x := &FieldExtractor{settings: settings}

	for _, spec := range fields {
		plan := fieldPlan{spec: spec}
		for idx, pat := range spec.Patterns {
			re, err := regexp.Compile("(?im)" + pat)
			if err != nil {
				logger.Warn("extractor: pattern %d of %s does not compile: %v", idx, spec.Name, err)
				continue
			}
			plan.strategies = append(plan.strategies, x.patternStrategy(spec.Class, re, idx))
		}
		if fb := x.fallbackStrategy(spec); fb != nil {
			plan.strategies = append(plan.strategies, fb)
		}
		x.plans = append(x.plans, plan)
	}

	return x
}

// Extract returns the fields found in the evidence text and the page
// level evidence. Missing fields are omitted.
func (x *FieldExtractor) Extract(_ context.Context, evidence domain.EvidenceContext) (domain.CriticalFieldSet, domain.EvidenceSet) {
	logger.Section("Field Extraction")

	fields := x.ExtractText(evidence.TextContext)
	return fields, x.Evidence(evidence)
}

// ExtractText runs every field plan over text.
func (x *FieldExtractor) ExtractText(text string) domain.CriticalFieldSet {
	fields := domain.NewCriticalFieldSet()
	for _, plan := range x.plans {
		for _, try := range plan.strategies {
			value, conf, kind, ok := try(text)
			if !ok {
				continue
			}
			fields.Set(plan.spec.Name, value, conf, kind)
			logger.Debug("%s = %q (%s, %.2f)", plan.spec.Name, value, kind, conf)
			break
		}
	}
	return fields
}

// Evidence selects the pages whose hits score above the threshold, the
// image paths of every image hit and the top text snippets.
func (x *FieldExtractor) Evidence(evidence domain.EvidenceContext) domain.EvidenceSet {
	set := domain.EvidenceSet{
		Pages:      []int{},
		Images:     evidence.ImagePaths(),
		TextChunks: evidence.TopTexts(evidenceTopText),
	}

	var pages []int
	for _, h := range evidence.TextHits {
		if h.Score > x.settings.EvidenceThreshold {
			pages = append(pages, h.Record.PageID)
		}
	}
	for _, h := range evidence.ImageHits {
		if h.Score > x.settings.EvidenceThreshold {
			pages = append(pages, h.Record.PageID)
		}
	}
	set.AddPages(pages...)
	return set
}

// patternStrategy takes the longest hit of one pattern, first in document
// order on ties, and validates it against the field class.
func (x *FieldExtractor) patternStrategy(class domain.FieldClass, re *regexp.Regexp, idx int) strategy {
	conf := x.patternConfidence(idx)

	return func(text string) (string, float64, string, bool) {
		best := ""
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			candidate = strings.TrimSpace(candidate)
			if len(candidate) > len(best) {
				best = candidate
			}
		}
		if !validValue(class, best) {
			return "", 0, "", false
		}

		c := conf
		if len(best) >= x.settings.BonusLength {
			c += x.settings.Bonus
		}
		return best, math.Min(c, x.settings.MaxConfidence), domain.StrategyPattern, true
	}
}

func (x *FieldExtractor) patternConfidence(idx int) float64 {
	return math.Max(x.settings.BaseConfidence-x.settings.Decay*float64(idx), x.settings.Floor)
}

func (x *FieldExtractor) fallbackStrategy(spec domain.FieldSpec) strategy {
	var pick func(string) string
	switch {
	case spec.Fallback == domain.FallbackFirstNameLine && spec.Class == domain.FieldClassName:
		pick = firstNameLine
	case spec.Fallback == domain.FallbackLongestLine && spec.Class == domain.FieldClassText:
		pick = longestLine
	default:
		return nil
	}

	return func(text string) (string, float64, string, bool) {
		v := pick(text)
		if v == "" {
			return "", 0, "", false
		}
		return v, x.settings.FallbackConfidence, domain.StrategyFallback, true
	}
}

// validValue applies the per-class rules: an amount has a digit and is not
// only zeros and punctuation, an identifier has at least three characters
// and a name is not purely numeric.
func validValue(class domain.FieldClass, v string) bool {
	if v == "" {
		return false
	}
	switch class {
	case domain.FieldClassAmount:
		return hasDigit(v) && strings.ContainsFunc(v, func(r rune) bool {
			return r != '0' && !isSeparator(r)
		})
	case domain.FieldClassIdentifier:
		return len([]rune(v)) >= 3
	case domain.FieldClassName:
		return strings.ContainsFunc(v, func(r rune) bool {
			return !unicode.IsDigit(r) && !unicode.IsSpace(r)
		})
	default:
		return true
	}
}

// isSeparator reports punctuation, currency signs and spacing.
func isSeparator(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

// firstNameLine returns the first line that looks like a person or
// company name.
func firstNameLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := len([]rune(line))
		if n < nameLineMin || n > nameLineMax || isContextHeader(line) {
			continue
		}
		if hasDigit(line) || len(strings.Fields(line)) > nameLineWords {
			continue
		}
		if strings.ContainsFunc(line, unicode.IsUpper) && strings.ContainsFunc(line, unicode.IsLower) {
			return line
		}
	}
	return ""
}

// longestLine returns the longest line of at least longestLineMin runes.
func longestLine(text string) string {
	best := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if isContextHeader(line) {
			continue
		}
		if n := len([]rune(line)); n >= longestLineMin && n > len([]rune(best)) {
			best = line
		}
	}
	return best
}
