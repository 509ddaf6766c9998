package driven

import "time"

// Metrics records pipeline instrumentation.
type Metrics interface {
	// ObserveStage records how long a pipeline stage took.
	ObserveStage(stage string, d time.Duration, err error)

	// DocumentProcessed counts a processed document and its pages.
	DocumentProcessed(pages int)

	// FieldExtracted counts a field by extraction strategy.
	FieldExtracted(field, strategy string)

	// ResultConfidence records the aggregate confidence of a result.
	ResultConfidence(confidence float64)

	// IndexSize reports the number of vectors in an index.
	IndexSize(modality string, n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveStage(string, time.Duration, error) {}
func (NopMetrics) DocumentProcessed(int)                     {}
func (NopMetrics) FieldExtracted(string, string)             {}
func (NopMetrics) ResultConfidence(float64)                  {}
func (NopMetrics) IndexSize(string, int)                     {}
