package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const answerSystemPrompt = `You answer questions strictly from the numbered context documents.
Cite every claim with the matching [n] marker. When past exchanges are
provided, use them only to resolve references like "it" or "that".
If the context does not contain the answer, say so plainly instead of
guessing.`

const chatSystemPrompt = `You are the IntraMind assistant, a retrieval agent over the
organization's document collections. Reply briefly and naturally. If the
user asks what you can do, point them at asking questions about the
ingested documents.`

// noDocumentsAnswer is returned without an LLM call when retrieval
// comes back empty.
const noDocumentsAnswer = "I could not find any relevant documents for this question. " +
	"Try rephrasing it, or check that the material has been ingested into the collection."

const snippetLen = 160

// synthesizer turns retrieved context into a cited answer, or holds a
// plain conversation when there is nothing to retrieve.
type synthesizer struct {
	llm    ChatModel
	logger *zap.Logger
}

func (s *synthesizer) synthesize(
	ctx context.Context, st *State, memories []Exchange,
) (string, []Source, int, error) {
	if st.Classification.Type == QueryConversational {
		res, err := s.llm.Complete(ctx, chatSystemPrompt, buildChatPrompt(st, memories))
		if err != nil {
			return "", nil, 0, fmt.Errorf("chat completion: %w", err)
		}
		return strings.TrimSpace(res.Content), nil, res.TotalTokens, nil
	}

	if len(st.Hits) == 0 {
		return noDocumentsAnswer, nil, 0, nil
	}

	sources := make([]Source, len(st.Hits))
	var blocks strings.Builder
	for i, hit := range st.Hits {
		fmt.Fprintf(&blocks, "[%d] %s\n\n", i+1, hit.Content)
		sources[i] = Source{
			Ref:        i + 1,
			DocumentID: hit.DocumentID,
			Score:      hit.Score,
			Snippet:    snippet(hit.Content, snippetLen),
		}
	}

	res, err := s.llm.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(st, blocks.String(), memories))
	if err != nil {
		return "", nil, 0, fmt.Errorf("answer synthesis: %w", err)
	}
	return strings.TrimSpace(res.Content), sources, res.TotalTokens, nil
}

func buildAnswerPrompt(st *State, contextBlocks string, memories []Exchange) string {
	var b strings.Builder
	b.WriteString("Context documents:\n")
	b.WriteString(contextBlocks)
	writeExchanges(&b, "Relevant past exchanges:", memories)
	writeExchanges(&b, "Conversation so far:", st.History)
	b.WriteString("Question: ")
	b.WriteString(st.Query)
	return b.String()
}

func buildChatPrompt(st *State, memories []Exchange) string {
	var b strings.Builder
	writeExchanges(&b, "Relevant past exchanges:", memories)
	writeExchanges(&b, "Conversation so far:", st.History)
	b.WriteString("User: ")
	b.WriteString(st.Query)
	return b.String()
}

func writeExchanges(b *strings.Builder, header string, exchanges []Exchange) {
	if len(exchanges) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteByte('\n')
	for _, ex := range exchanges {
		fmt.Fprintf(b, "Q: %s\nA: %s\n", ex.Question, ex.Answer)
	}
	b.WriteByte('\n')
}

// snippet truncates content for source display, cutting at a rune
// boundary.
func snippet(content string, maxLen int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
