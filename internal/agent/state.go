package agent

import "time"

// QueryType is the classified intent of a user query.
type QueryType string

const (
	QueryFactual        QueryType = "factual"
	QueryExploratory    QueryType = "exploratory"
	QueryProcedural     QueryType = "procedural"
	QueryConversational QueryType = "conversational"
)

// IsValid reports whether the type is one of the known categories.
func (t QueryType) IsValid() bool {
	switch t {
	case QueryFactual, QueryExploratory, QueryProcedural, QueryConversational:
		return true
	}
	return false
}

// Classification is the outcome of the classify stage.
type Classification struct {
	Type       QueryType
	Confidence float64
	// Collection is an optional target collection hint; empty means
	// the caller's default applies.
	Collection string
}

// Exchange is one completed question/answer pair from the session.
type Exchange struct {
	Question string
	Answer   string
}

// Source is one context document offered to the synthesis stage.
// Ref matches the [n] citation markers in the answer.
type Source struct {
	Ref        int
	DocumentID string
	Score      float64
	Snippet    string
}

// StageTiming records the wall time of one workflow stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// State carries a query through classify, expand, retrieve, and
// synthesize. Stages fill in their slice of the struct; nothing is
// mutated after Run returns.
type State struct {
	Query           string
	History         []Exchange
	Classification  Classification
	ExpandedQueries []string
	Hits            []RetrievedDocument
	Answer          string
	Sources         []Source
	TokensUsed      int
	Timing          []StageTiming
}

// RetrievedDocument is one fused retrieval hit.
type RetrievedDocument struct {
	DocumentID string
	Score      float64
	Content    string
	Metadata   map[string]string
}

func (s *State) addTiming(stage string, start time.Time) {
	s.Timing = append(s.Timing, StageTiming{Stage: stage, Duration: time.Since(start)})
}
