package extract

// Origin classifies why a tool-like line was or was not turned into an
// executable invocation.
type Origin string

const (
	// OriginStandalone marks a line judged to be a genuine tool request.
	OriginStandalone Origin = "standalone"
	// OriginSuppressedExplanatory marks a syntactic match inside
	// hypothetical or instructional prose ("you can use @bash ...").
	OriginSuppressedExplanatory Origin = "suppressed-explanatory"
	// OriginSuppressedCodeblock marks a match inside a fenced block or an
	// inline code span.
	OriginSuppressedCodeblock Origin = "suppressed-codeblock"
)

// Invocation is a parsed request to run one tool with one argument string.
// Values are immutable once returned by the Extractor.
type Invocation struct {
	// Tool is the canonical tool name (aliases already resolved).
	Tool string
	// Args is everything after the keyword separator, trimmed.
	Args string
	// Line is the zero-based index of the source line in the response.
	Line int
	// Origin records the classification outcome.
	Origin Origin
}
