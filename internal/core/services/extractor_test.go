package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/catalog"
	"github.com/custodia-labs/docsight/internal/core/domain"
)

func newTestExtractor() *FieldExtractor {
	return NewFieldExtractor(catalog.Fields(), domain.DefaultExtractionSettings())
}

func TestFieldExtractor_PolicyNumber(t *testing.T) {
	fields := newTestExtractor().ExtractText("Policy Number: ABC123456")

	v, ok := fields.Get(catalog.FieldPolicyNumber)
	require.True(t, ok)
	assert.Equal(t, "ABC123456", v)
	assert.GreaterOrEqual(t, fields.Confidence[catalog.FieldPolicyNumber], 0.9)
	assert.Equal(t, domain.StrategyPattern, fields.Strategy[catalog.FieldPolicyNumber])
}

func TestFieldExtractor_NoAmountMeansAbsent(t *testing.T) {
	fields := newTestExtractor().ExtractText("Policy Number: ABC123456\nStatus: Approved")

	assert.False(t, fields.Has(catalog.FieldClaimAmount))
	assert.False(t, fields.Has(catalog.FieldAmountDue))
	assert.Equal(t, "Approved", fields.Values[catalog.FieldStatus])
}

func TestFieldExtractor_InvoiceFields(t *testing.T) {
	text := "Invoice Number: INV-2024-017\nBill To: Harbor Logistics Ltd\nTotal: Rs. 4,500.00"
	fields := newTestExtractor().ExtractText(text)

	assert.Equal(t, "INV-2024-017", fields.Values[catalog.FieldInvoiceNumber])
	assert.InDelta(t, 0.99, fields.Confidence[catalog.FieldInvoiceNumber], 1e-9)

	assert.Equal(t, "4,500.00", fields.Values[catalog.FieldAmountDue])
	assert.InDelta(t, 0.95, fields.Confidence[catalog.FieldAmountDue], 1e-9)
}

func TestFieldExtractor_LongestHitWins(t *testing.T) {
	spec := domain.FieldSpec{
		Name:     "code",
		Class:    domain.FieldClassIdentifier,
		Patterns: []string{`code\s+(\w+)`},
	}
	x := NewFieldExtractor([]domain.FieldSpec{spec}, domain.DefaultExtractionSettings())

	fields := x.ExtractText("code ABC\ncode ABCDEF\ncode XYZ123")
	assert.Equal(t, "ABCDEF", fields.Values["code"], "first of the longest hits")
}

func TestFieldExtractor_ValidationFallsThrough(t *testing.T) {
	spec := domain.FieldSpec{
		Name:  "amount",
		Class: domain.FieldClassAmount,
		Patterns: []string{
			`Total:\s*([\d.,]+)`,
			`Due:\s*([\d.,]+)`,
		},
	}
	x := NewFieldExtractor([]domain.FieldSpec{spec}, domain.DefaultExtractionSettings())

	fields := x.ExtractText("Total: 0.00\nDue: 125")
	assert.Equal(t, "125", fields.Values["amount"])
	assert.InDelta(t, 0.90, fields.Confidence["amount"], 1e-9)
}

func TestFieldExtractor_ClassRules(t *testing.T) {
	tests := []struct {
		class domain.FieldClass
		value string
		want  bool
	}{
		{domain.FieldClassAmount, "4,500.00", true},
		{domain.FieldClassAmount, "0,000.00", false},
		{domain.FieldClassAmount, ",", false},
		{domain.FieldClassAmount, "₹0.00", false},
		{domain.FieldClassAmount, "0 USD", true},
		{domain.FieldClassAmount, "USD", false},
		{domain.FieldClassIdentifier, "AB", false},
		{domain.FieldClassIdentifier, "AB1", true},
		{domain.FieldClassName, "12345", false},
		{domain.FieldClassName, "12 345", false},
		{domain.FieldClassName, "---", true},
		{domain.FieldClassName, "Jane Doe", true},
		{domain.FieldClassDate, "", false},
		{domain.FieldClassText, "anything", true},
	}

	for _, tc := range tests {
		t.Run(string(tc.class)+"_"+tc.value, func(t *testing.T) {
			assert.Equal(t, tc.want, validValue(tc.class, tc.value))
		})
	}
}

func TestFieldExtractor_ConfidenceCalibration(t *testing.T) {
	x := NewFieldExtractor(nil, domain.DefaultExtractionSettings())

	assert.InDelta(t, 0.95, x.patternConfidence(0), 1e-9)
	assert.InDelta(t, 0.85, x.patternConfidence(2), 1e-9)
	assert.InDelta(t, 0.5, x.patternConfidence(20), 1e-9)
}

func TestFieldExtractor_BonusCapped(t *testing.T) {
	spec := domain.FieldSpec{Name: "id", Class: domain.FieldClassIdentifier, Patterns: []string{`id\s+(\S+)`}}
	x := NewFieldExtractor([]domain.FieldSpec{spec}, domain.DefaultExtractionSettings())

	long := x.ExtractText("id ABCDEFGH")
	assert.InDelta(t, 0.99, long.Confidence["id"], 1e-9)

	short := x.ExtractText("id ABC")
	assert.InDelta(t, 0.95, short.Confidence["id"], 1e-9)
}

func TestFieldExtractor_MalformedPatternIsSkipped(t *testing.T) {
	spec := domain.FieldSpec{
		Name:     "id",
		Class:    domain.FieldClassIdentifier,
		Patterns: []string{`(unclosed`, `ID:\s*(\w+)`},
	}
	x := NewFieldExtractor([]domain.FieldSpec{spec}, domain.DefaultExtractionSettings())

	fields := x.ExtractText("ID: XYZ789")
	assert.Equal(t, "XYZ789", fields.Values["id"])
}

func TestFieldExtractor_Fallbacks(t *testing.T) {
	text := "[Text Chunk 1, Score: 0.900]\nACME 2024\nHarbor Logistics Ltd\nWater damage to the ground floor warehouse ceiling"
	fields := newTestExtractor().ExtractText(text)

	assert.Equal(t, "Harbor Logistics Ltd", fields.Values[catalog.FieldVendorName])
	assert.Equal(t, domain.StrategyFallback, fields.Strategy[catalog.FieldVendorName])
	assert.InDelta(t, 0.6, fields.Confidence[catalog.FieldVendorName], 1e-9)

	assert.Equal(t, "Water damage to the ground floor warehouse ceiling", fields.Values[catalog.FieldDescription])
	assert.InDelta(t, 0.6, fields.Confidence[catalog.FieldDescription], 1e-9)

	assert.False(t, fields.Has(catalog.FieldPaymentTerms), "text fields without a fallback stay absent")
}

func TestFirstNameLine(t *testing.T) {
	assert.Equal(t, "Jane Doe", firstNameLine("1234\nALLCAPS LINE\nJane Doe\nJohn Smith"))
	assert.Empty(t, firstNameLine("one two three four five Six"))
	assert.Empty(t, firstNameLine("Abc"))
}

func TestLongestLine(t *testing.T) {
	assert.Equal(t, "this line is comfortably long", longestLine("short\nthis line is comfortably long\nthis is shorter line"))
	assert.Empty(t, longestLine("tiny\nlines only"))
}

func TestFieldExtractor_Evidence(t *testing.T) {
	x := newTestExtractor()

	evidence := domain.EvidenceContext{
		TextHits: []domain.TextHit{
			{Record: domain.TextRecord{PageID: 3, Text: "c"}, Score: 0.7},
			{Record: domain.TextRecord{PageID: 1, Text: "a"}, Score: 0.3},
			{Record: domain.TextRecord{PageID: 3, Text: "d"}, Score: 0.6},
			{Record: domain.TextRecord{PageID: 2, Text: "b"}, Score: 0.41},
		},
		ImageHits: []domain.ImageHit{
			{Record: domain.ImageRecord{PageID: 1, ImagePath: "p1.png"}, Score: 0.2},
			{Record: domain.ImageRecord{PageID: 4, ImagePath: "p4.png"}, Score: 0.9},
		},
	}

	fields, set := x.Extract(context.Background(), evidence)
	assert.Equal(t, 0, fields.Len())
	assert.Equal(t, []int{2, 3, 4}, set.Pages)
	assert.Equal(t, []string{"p1.png", "p4.png"}, set.Images)
	assert.Equal(t, []string{"c", "a", "d"}, set.TextChunks)
}

func TestFieldExtractor_EvidenceThresholdIsExclusive(t *testing.T) {
	settings := domain.DefaultExtractionSettings()
	settings.EvidenceThreshold = 0.5
	x := NewFieldExtractor(nil, settings)

	set := x.Evidence(domain.EvidenceContext{TextHits: []domain.TextHit{
		{Record: domain.TextRecord{PageID: 1}, Score: 0.5},
		{Record: domain.TextRecord{PageID: 2}, Score: 0.51},
	}})
	assert.Equal(t, []int{2}, set.Pages)
}
