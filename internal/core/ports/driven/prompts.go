package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Falls back to the built-in default when the name is well-known.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGAnswer frames retrieved sources for the analyst.
	// The template expects %s (ticker context), %s (sources) and %s (question).
	PromptRAGAnswer = "rag_answer"

	// PromptSummarise summarises a document.
	// The template expects %d (max words) and %s (content).
	PromptSummarise = "summarise"

	// PromptExtractEntities asks for companies, tickers, people, amounts,
	// dates and metrics as JSON. The template expects %s (content).
	PromptExtractEntities = "extract_entities"
)

// AnalystPromptName returns the prompt name holding the system prompt for an
// analysis type, e.g. "analyst_fundamental".
func AnalystPromptName(analysisType string) string {
	return "analyst_" + analysisType
}
