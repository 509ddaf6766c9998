package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/logger"
)

// corroboration is the vocabulary that backs up one kind of query.
type corroboration struct {
	trigger string
	words   []string
	label   string
}

var corroborations = []corroboration{
	{trigger: "claim", words: []string{"damage", "incident", "accident"}, label: "Claim details found"},
	{trigger: "policy", words: []string{"coverage", "premium", "term"}, label: "Policy information found"},
	{trigger: "invoice", words: []string{"payment", "total", "due"}, label: "Billing details found"},
}

// relationship links two extracted fields under one name.
type relationship struct {
	name   string
	fields [2]string
	keys   [2]string
	extra  map[string]string
}

const snippetLength = 200

// ConsistencyChecker cross-checks extracted fields against the retrieved
// text. Inconsistencies are soft: they never remove a field.
type ConsistencyChecker struct {
	numericFields []string
	relationships []relationship
}

// NewConsistencyChecker creates a checker for the given field catalog.
// Amount-class fields are checked against the evidence text.
func NewConsistencyChecker(fields []domain.FieldSpec) *ConsistencyChecker {
	var numeric []string
	for _, f := range fields {
		if f.Class == domain.FieldClassAmount {
			numeric = append(numeric, f.Name)
		}
	}

	return &ConsistencyChecker{
		numericFields: numeric,
		relationships: []relationship{
			{
				name:   "policy_claim_link",
				fields: [2]string{"policy_number", "claim_number"},
				keys:   [2]string{"policy", "claim"},
				extra:  map[string]string{"relationship": "associated"},
			},
			{
				name:   "timeline",
				fields: [2]string{"date", "status"},
				keys:   [2]string{"date", "status"},
			},
			{
				name:   "invoice_billing",
				fields: [2]string{"invoice_number", "amount_due"},
				keys:   [2]string{"invoice", "amount_due"},
			},
		},
	}
}

// Analyze corroborates the query against the top chunks, flags numeric
// fields missing from the evidence and links related fields.
func (c *ConsistencyChecker) Analyze(
	_ context.Context, query string, evidence domain.EvidenceContext, fields domain.CriticalFieldSet,
) domain.ConsistencyReport {
	logger.Section("Consistency Check")

	top := evidence.TopTexts(evidenceTopText)
	report := domain.ConsistencyReport{
		IsConsistent:   true,
		Issues:         []string{},
		Analysis:       c.corroborate(query, top),
		Relationships:  c.link(fields),
		RelevantChunks: top,
	}

	var numbers []string
	for _, h := range evidence.TextHits {
		numbers = append(numbers, numericTokens(h.Record.Text)...)
	}

	for _, name := range c.numericFields {
		value, ok := fields.Get(name)
		if !ok {
			continue
		}
		want := digitsOnly(value)
		found := false
		for _, n := range numbers {
			if want != "" && strings.Contains(n, want) {
				found = true
				break
			}
		}
		if !found {
			report.IsConsistent = false
			report.Issues = append(report.Issues, fmt.Sprintf("%s %q not found in retrieved chunks", name, value))
			logger.Debug("inconsistent: %s=%q", name, value)
		}
	}

	return report
}

// numericTokens returns the digits of every whitespace-separated token
// that has any. Separators inside a token ("4,500.00") are dropped, but
// digits of neighbouring tokens are never joined.
func numericTokens(text string) []string {
	var out []string
	for _, tok := range strings.Fields(text) {
		if d := digitsOnly(tok); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func (c *ConsistencyChecker) corroborate(query string, chunks []string) []string {
	q := strings.ToLower(query)
	analysis := []string{}
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk)
		for _, rule := range corroborations {
			if !strings.Contains(q, rule.trigger) {
				continue
			}
			for _, w := range rule.words {
				if strings.Contains(lower, w) {
					analysis = append(analysis, fmt.Sprintf("%s: %s", rule.label, truncate(chunk, snippetLength)))
					break
				}
			}
		}
	}
	return analysis
}

func (c *ConsistencyChecker) link(fields domain.CriticalFieldSet) map[string]domain.Relationship {
	out := make(map[string]domain.Relationship)
	for _, rel := range c.relationships {
		a, okA := fields.Get(rel.fields[0])
		b, okB := fields.Get(rel.fields[1])
		if !okA || !okB {
			continue
		}
		r := domain.Relationship{rel.keys[0]: a, rel.keys[1]: b}
		for k, v := range rel.extra {
			r[k] = v
		}
		out[rel.name] = r
	}
	return out
}
