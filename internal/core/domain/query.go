package domain

// NotFoundAnswer is the canonical answer when no grounded response can be
// produced. The generation adapter enforces it at its boundary; callers
// must compare against this constant, never a free-form literal.
const NotFoundAnswer = "Information not found in knowledge base."

// RetrievedChunk pairs a chunk identity with its L2 search distance.
// Lower distance means more similar.
type RetrievedChunk struct {
	ChunkID  string
	Distance float64
}

// RankedChunk is a retrieval candidate after lexical re-ranking.
type RankedChunk struct {
	Chunk Chunk

	// Distance is the L2 distance from the original index hit.
	Distance float64

	// LexicalScore counts question words found as case-insensitive
	// substrings of the chunk text.
	LexicalScore int
}

// Source is a citation entry returned with an answer.
type Source struct {
	SourceType string   `json:"source_type"`
	SourceFile string   `json:"source_file"`
	PageNumber *int     `json:"page_number,omitempty"`
	Timestamp  *float64 `json:"timestamp,omitempty"`
}

// SourceFor builds the citation entry for a chunk.
func SourceFor(c Chunk) Source {
	return Source{
		SourceType: c.SourceType,
		SourceFile: c.SourceFile,
		PageNumber: c.PageNumber,
		Timestamp:  c.Timestamp,
	}
}

// Answer is the outcome of a generation call. Found distinguishes a
// grounded answer from the not-found fallback so that callers decide by
// flag, not by string matching.
type Answer struct {
	Text  string
	Found bool
}

// NotFound returns the canonical fallback answer.
func NotFound() Answer {
	return Answer{Text: NotFoundAnswer, Found: false}
}

// ChatMessage is a single turn of conversation history.
type ChatMessage struct {
	// Role is "user" or "assistant".
	Role string

	Content string
}

// QueryResult is the full response to a question.
type QueryResult struct {
	Answer string `json:"answer"`

	// Confidence is a heuristic 0-100 scale derived from the mean L2
	// distance of the selected chunks. It is not a calibrated
	// probability.
	Confidence float64 `json:"confidence"`

	Sources []Source `json:"sources"`
}

// StreamEvent is one element of a streamed answer. Exactly one field is
// meaningful: Token for a content fragment, Err for a terminal failure.
// A closed stream without Err means normal completion.
type StreamEvent struct {
	Token string
	Err   error
}
