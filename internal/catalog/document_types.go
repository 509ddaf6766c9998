package catalog

import "github.com/custodia-labs/docsight/internal/core/domain"

// Document type names, in catalog order.
const (
	TypeClaimForm        = "Claim Form"
	TypeInspectionReport = "Inspection Report"
	TypeInvoice          = "Invoice"
	TypePolicyDocument   = "Policy Document"
	TypeCoverLetter      = "Cover Letter"
)

// DocumentTypes returns the document type catalog.
// Order is significant: classification ties go to the first entry.
func DocumentTypes() []domain.DocumentTypeProfile {
	return []domain.DocumentTypeProfile{
		{
			Name: TypeClaimForm,
			Keywords: []string{
				"claim", "claimant", "claim number", "incident", "loss",
				"date of loss", "description of loss", "claim amount",
				"fill in", "form", "signature", "declaration",
			},
			Patterns:    []string{`claim.*form`, `claim.*submission`, `insurance.*claim`},
			Description: "Document used to submit an insurance claim",
			Fields:      []string{FieldClaimNumber, FieldPolicyNumber, FieldClaimAmount, FieldDate, FieldInsuredName, FieldStatus},
			SuggestedQueries: []string{
				"What is the claim number?",
				"What is the claim amount?",
				"What is the policy number?",
			},
		},
		{
			Name: TypeInspectionReport,
			Keywords: []string{
				"inspection", "report", "surveyor", "inspector", "findings",
				"damage", "assessment", "condition", "photograph", "recommendation",
				"site inspection", "physical condition", "observations",
			},
			Patterns:    []string{`inspection.*report`, `surveyor.*report`, `damage.*assessment`},
			Description: "Professional assessment of property/damage",
			Fields:      []string{FieldClaimNumber, FieldPolicyNumber, FieldDate, FieldDescription, FieldStatus},
			SuggestedQueries: []string{
				"What damages were found?",
				"Who conducted the inspection?",
				"What are the recommendations?",
			},
		},
		{
			Name: TypeInvoice,
			Keywords: []string{
				"invoice", "billing", "amount due", "invoice number", "date",
				"bill", "charges", "payment", "due date", "description of services",
				"qty", "rate", "total", "from", "to",
			},
			Patterns:    []string{`invoice.*number`, `bill.*to`, `amount.*due`},
			Description: "Billing document for services/goods",
			Fields:      []string{FieldInvoiceNumber, FieldAmountDue, FieldDate, FieldVendorName, FieldDescription, FieldPaymentTerms},
			SuggestedQueries: []string{
				"What is the invoice number?",
				"What is the total amount due?",
				"Who is the vendor?",
			},
		},
		{
			Name: TypePolicyDocument,
			Keywords: []string{
				"policy", "coverage", "premium", "terms", "conditions", "exclusions",
				"period", "insured", "deductible", "coverage limits", "effective date",
				"policy holder", "renewal", "insurance",
			},
			Patterns:    []string{`insurance.*policy`, `policy.*document`, `coverage.*terms`},
			Description: "Insurance policy terms and conditions",
			Fields:      []string{FieldPolicyNumber, FieldInsuredName, FieldDate, FieldStatus},
			SuggestedQueries: []string{
				"What is the policy number?",
				"What is the coverage?",
				"What is the premium amount?",
			},
		},
		{
			Name: TypeCoverLetter,
			Keywords: []string{
				"cover", "letter", "submission", "enclosed", "attached", "please find",
				"documents", "regarding", "reference", "dear", "sincerely", "regards",
			},
			Patterns:    []string{`cover.*letter`, `submission.*letter`, `accompanying.*letter`},
			Description: "Explanatory letter accompanying documents",
			Fields:      []string{FieldDate, FieldPolicyNumber, FieldClaimNumber},
			SuggestedQueries: []string{
				"What documents are attached?",
				"Who is the recipient?",
				"What is the date?",
			},
		},
	}
}

// DocumentType looks up a profile by name.
func DocumentType(name string) (domain.DocumentTypeProfile, bool) {
	for _, p := range DocumentTypes() {
		if p.Name == name {
			return p, true
		}
	}
	return domain.DocumentTypeProfile{}, false
}
