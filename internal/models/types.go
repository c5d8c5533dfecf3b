package models

// ParsedInvoice is the OCR-derived reference text for an invoice.
// Produced once by the parser collaborator and never mutated afterwards.
type ParsedInvoice struct {
	RawText string `json:"raw_text"`
}

// InsightLabel classifies one insight against the reference invoice data.
type InsightLabel string

const (
	InsightFactual      InsightLabel = "factual"
	InsightHallucinated InsightLabel = "hallucinated"
	InsightPartial      InsightLabel = "partial"
)

// QualityLevel is one step of the four-level quality rubric.
type QualityLevel string

const (
	QualityExcellent QualityLevel = "excellent"
	QualityGood      QualityLevel = "good"
	QualityFair      QualityLevel = "fair"
	QualityPoor      QualityLevel = "poor"
)

// InsightFinding is the factual-completeness judge's per-insight
// classification. Insight is the 1-based position in the generated list.
type InsightFinding struct {
	Insight int          `json:"insight"`
	Label   InsightLabel `json:"label"`
	Issue   string       `json:"issue,omitempty"`
}

// FactualVerdict is the factual-completeness judge's output. Scores are
// percentages: CompletenessScore covers data-point coverage, AccuracyScore
// covers per-insight factuality, Score combines the two.
type FactualVerdict struct {
	Explanation       string           `json:"explanation"`
	DataPointsFound   []string         `json:"data_points_found"`
	Covered           []string         `json:"covered"`
	Missing           []string         `json:"missing"`
	PerInsight        []InsightFinding `json:"per_insight"`
	CompletenessScore float64          `json:"completeness_score"`
	AccuracyScore     float64          `json:"accuracy_score"`
	Score             float64          `json:"score"`
}

// CriterionRating grades one rubric axis: excellent=4, good=3, fair=2, poor=1.
type CriterionRating struct {
	Label QualityLevel `json:"label"`
	Score float64      `json:"score"`
}

// QualityVerdict is the quality judge's output. Score is the mean of the four
// criterion scores on the 1-4 rubric scale, not 0-100; the aggregator owns
// the rescaling.
type QualityVerdict struct {
	Explanation   string          `json:"explanation"`
	Clarity       CriterionRating `json:"clarity"`
	Specificity   CriterionRating `json:"specificity"`
	Diversity     CriterionRating `json:"diversity"`
	Actionability CriterionRating `json:"actionability"`
	Score         float64         `json:"score"`
}

// FieldMatch is a data point both extractions agree on.
type FieldMatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FieldMismatch is a data point where the two extractions disagree, with the
// literal value quoted from each source.
type FieldMismatch struct {
	Field   string `json:"field"`
	SourceA string `json:"source_a"`
	SourceB string `json:"source_b"`
}

// ConsistencyVerdict is the parsing-consistency judge's output. Score is the
// percentage of compared fields rated as a match.
type ConsistencyVerdict struct {
	Explanation    string          `json:"explanation"`
	FieldsCompared []string        `json:"fields_compared"`
	Matches        []FieldMatch    `json:"matches"`
	Mismatches     []FieldMismatch `json:"mismatches"`
	Score          float64         `json:"score"`
}

// EvaluationRequest is the input message accepted by the API, batch and
// stream surfaces. The image is referenced by path or carried inline as
// base64 bytes plus a MIME type.
type EvaluationRequest struct {
	RequestID     string   `json:"request_id"`
	ImagePath     string   `json:"image_path,omitempty"`
	ImageData     []byte   `json:"image_data,omitempty"`
	MIMEType      string   `json:"mime_type,omitempty"`
	Insights      []string `json:"insights"`
	ParserRawText string   `json:"parser_raw_text,omitempty"`
}

// EvaluationResult is the terminal artifact of one evaluation run.
type EvaluationResult struct {
	ExtractedText       string            `json:"extracted_text"`
	FactualCompleteness FactualResult     `json:"factual_completeness"`
	Quality             QualityResult     `json:"quality"`
	ParsingConsistency  ConsistencyResult `json:"parsing_consistency"`
	OverallScore        float64           `json:"overall_score"`
}
