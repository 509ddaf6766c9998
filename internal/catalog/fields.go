package catalog

import "github.com/custodia-labs/docsight/internal/core/domain"

// Field names.
const (
	FieldPolicyNumber  = "policy_number"
	FieldClaimNumber   = "claim_number"
	FieldClaimAmount   = "claim_amount"
	FieldDate          = "date"
	FieldStatus        = "status"
	FieldInsuredName   = "insured_name"
	FieldInvoiceNumber = "invoice_number"
	FieldAmountDue     = "amount_due"
	FieldVendorName    = "vendor_name"
	FieldDescription   = "description"
	FieldPaymentTerms  = "payment_terms"
)

// currency matches an optional currency marker before an amount.
const currency = `(?:₹|Rs\.?|INR|USD|\$)`

// amount captures a grouped number with optional paise/cents.
const amount = `([\d,]+(?:\.\d{2})?)`

// personName captures two to four capitalised words.
const personName = `([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})`

// Fields returns the field extraction catalog in extraction order.
// Patterns are compiled case-insensitive and multi-line by the extractor.
func Fields() []domain.FieldSpec {
	return []domain.FieldSpec{
		{
			Name:  FieldPolicyNumber,
			Label: "Policy Number",
			Class: domain.FieldClassIdentifier,
			Patterns: []string{
				`Policy\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-/]+)`,
				`Policy\s*:?\s*([A-Z]{2,}\d{6,})`,
				`PN[:\-\s]*([A-Z0-9\-]+)`,
				`Policy\s+ID\s*:?\s*([A-Z0-9\-/]+)`,
				`(?:Policy|Pol\.)\s*(?:No|Number|#)?\s*[:.]?\s*([A-Z0-9]{6,})`,
				`([A-Z]{3,}[\-/]?\d{6,})`,
				`\b([A-Z]{2}\d{8,})\b`,
				`Policy\s+([A-Z0-9\-/]{6,})`,
			},
		},
		{
			Name:  FieldClaimNumber,
			Label: "Claim Number",
			Class: domain.FieldClassIdentifier,
			Patterns: []string{
				`Claim\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-/]+)`,
				`Claim\s*:?\s*([A-Z]{2,}\d{6,})`,
				`CN[:\-\s]*([A-Z0-9\-]+)`,
				`Claim\s+ID\s*:?\s*([A-Z0-9\-/]+)`,
				`(?:Claim|Clm\.)\s*(?:No|Number|#)?\s*[:.]?\s*([A-Z0-9]{6,})`,
			},
		},
		{
			Name:  FieldClaimAmount,
			Label: "Claim Amount",
			Class: domain.FieldClassAmount,
			Patterns: []string{
				`(?:Claim|Amount|Total|Sum)\s*(?:Amount)?\s*:?\s*` + currency + `?\s*` + amount,
				currency + `\s*` + amount,
				`Amount\s*(?:Claimed|Due|Payable)?\s*:?\s*(?:₹|Rs\.?|INR)?\s*` + amount,
				`Total\s*:?\s*(?:₹|Rs\.?|INR)?\s*` + amount,
				`(?:Payment|Payout)\s*:?\s*(?:₹|Rs\.?|INR)?\s*` + amount,
				`\b([\d,]{4,}(?:\.\d{2})?)\s*(?:rupees|INR|Rs|only)\b`,
			},
		},
		{
			Name:  FieldDate,
			Label: "Date",
			Class: domain.FieldClassDate,
			Patterns: []string{
				`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
				`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`,
				`(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})`,
				`(?:Date|Dated|On)\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
				`(?:Effective|Issue|Start)\s+Date\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			},
		},
		{
			Name:  FieldStatus,
			Label: "Status",
			Class: domain.FieldClassStatus,
			Patterns: []string{
				`Status\s*:?\s*(Approved|Pending|Under\s+Review|Rejected|Processing|Active|Inactive|Expired|Settled)`,
				`(?:Claim|Policy)\s+Status\s*:?\s*(Approved|Pending|Under\s+Review|Rejected|Processing|Active|Inactive)`,
				`\b(Approved|Pending|Rejected|Settled|Processing)\b`,
			},
		},
		{
			Name:  FieldInsuredName,
			Label: "Insured Name",
			Class: domain.FieldClassName,
			Patterns: []string{
				`Insured\s*(?:Name|Person)?\s*:?\s*` + personName,
				`Policy\s*Holder\s*:?\s*` + personName,
				`Name\s*:?\s*` + personName,
				`(?:Mr\.|Mrs\.|Ms\.)\s+` + personName,
			},
			Fallback: domain.FallbackFirstNameLine,
		},
		{
			Name:  FieldInvoiceNumber,
			Label: "Invoice Number",
			Class: domain.FieldClassIdentifier,
			Patterns: []string{
				`Invoice\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-/]+)`,
				`Inv\.?\s*(?:No\.?|#)\s*:?\s*([A-Z0-9\-/]+)`,
				`Bill\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-/]+)`,
				`\b(INV[\-/]?[A-Z0-9\-/]{3,})\b`,
			},
		},
		{
			Name:  FieldAmountDue,
			Label: "Amount Due",
			Class: domain.FieldClassAmount,
			Patterns: []string{
				`Amount\s*Due\s*:?\s*` + currency + `?\s*` + amount,
				`(?:Total|Balance|Grand\s+Total)\s*(?:Due|Amount|Payable)?\s*:?\s*` + currency + `?\s*` + amount,
				`(?:Amount\s+Payable|Net\s+Payable)\s*:?\s*` + currency + `?\s*` + amount,
				currency + `\s*` + amount,
			},
		},
		{
			Name:  FieldVendorName,
			Label: "Vendor Name",
			Class: domain.FieldClassName,
			Patterns: []string{
				`(?:Vendor|Supplier|Billed\s+By|Seller)\s*(?:Name)?\s*:\s*([A-Z][A-Za-z&.,']*(?:[ \t]+[A-Z][A-Za-z&.,']*){0,4})`,
				`From\s*:\s*([A-Z][A-Za-z&.,']*(?:[ \t]+[A-Z][A-Za-z&.,']*){0,4})`,
			},
			Fallback: domain.FallbackFirstNameLine,
		},
		{
			Name:  FieldDescription,
			Label: "Description",
			Class: domain.FieldClassText,
			Patterns: []string{
				`Description\s*(?:of\s+(?:Services|Goods|Loss|Damage))?\s*:\s*([^\n]{5,})`,
				`Particulars\s*:\s*([^\n]{5,})`,
			},
			Fallback: domain.FallbackLongestLine,
		},
		{
			Name:  FieldPaymentTerms,
			Label: "Payment Terms",
			Class: domain.FieldClassText,
			Patterns: []string{
				`Payment\s+Terms\s*:?\s*([^\n]{3,})`,
				`\b(Net\s*\d{1,3}(?:\s+days)?)\b`,
				`\b(Due\s+(?:on|upon)\s+receipt)\b`,
			},
		},
	}
}

// Field looks up a field spec by name.
func Field(name string) (domain.FieldSpec, bool) {
	for _, f := range Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FieldSpec{}, false
}

// FieldsOfClass returns the names of every field of the given class.
func FieldsOfClass(class domain.FieldClass) []string {
	var names []string
	for _, f := range Fields() {
		if f.Class == class {
			names = append(names, f.Name)
		}
	}
	return names
}
