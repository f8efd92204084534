package domain

// ScoredChunk pairs a chunk with its relevance score.
type ScoredChunk struct {
	Chunk Chunk

	// DocumentName is the display name of the chunk's document, captured in
	// the same index snapshot as the chunk.
	DocumentName string

	// Score is in [0, 1); higher is more relevant.
	Score float64
}

// RetrievalResult is a ranked sequence of chunks for one query.
// Ordered by Score descending, then Sequence ascending.
type RetrievalResult []ScoredChunk

// Citation is a presentable reference to a retrieved chunk.
type Citation struct {
	// Rank is the 1-based position in the result list, used as [Source N].
	Rank int

	DocumentID   string
	DocumentName string
	Locator      Locator

	// Excerpt is the quoted chunk text, bounded by the configured maximum.
	Excerpt string

	// Truncated is true if Excerpt is shorter than the chunk text.
	Truncated bool

	Score    float64
	ChunkID  string
	Sequence int
	Start    int
	End      int
}

// QueryOptions narrows and sizes a query.
type QueryOptions struct {
	// Scope restricts results to these document IDs. Empty means all.
	Scope []string

	// Ticker restricts results to documents associated with the ticker.
	Ticker string

	// K is the maximum number of results. Zero uses the configured default.
	K int
}

// HasScope returns true if the query is restricted to specific documents.
func (o QueryOptions) HasScope() bool {
	return len(o.Scope) > 0 || o.Ticker != ""
}

// AnalysisType selects the analyst's system prompt.
type AnalysisType string

// Analysis types.
const (
	AnalysisGeneral     AnalysisType = "general"
	AnalysisFundamental AnalysisType = "fundamental"
	AnalysisTechnical   AnalysisType = "technical"
	AnalysisSentiment   AnalysisType = "sentiment"
	AnalysisNews        AnalysisType = "news"
)

// AnalysisTypes lists every analysis type.
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{
		AnalysisGeneral, AnalysisFundamental, AnalysisTechnical,
		AnalysisSentiment, AnalysisNews,
	}
}

// IsValid returns true if the analysis type is recognised.
func (a AnalysisType) IsValid() bool {
	for _, t := range AnalysisTypes() {
		if a == t {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (a AnalysisType) String() string {
	return string(a)
}

// Answer is a generated response grounded on citations.
type Answer struct {
	Text         string
	Citations    []Citation
	Model        string
	AnalysisType AnalysisType
}

// Entities are the financial entities an LLM found in a document.
// Raw holds the model reply when it could not be read as JSON.
type Entities struct {
	Companies      []string `json:"companies"`
	Tickers        []string `json:"tickers"`
	People         []string `json:"people"`
	MonetaryValues []string `json:"monetary_values"`
	Dates          []string `json:"dates"`
	Metrics        []string `json:"metrics"`
	Raw            string   `json:"raw_response,omitempty"`
}
