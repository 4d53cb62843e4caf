package service

import (
	"fmt"
	"strings"

	"github.com/docsense-ai/docsense/internal/domain"
)

const briefSummaryTemplate = `You are an expert at creating concise summaries of documents.

Given the following document, create a brief summary (2-3 sentences) that captures the most important points:

Document:
%s

Brief Summary:`

const standardSummaryTemplate = `You are an expert at creating comprehensive summaries of documents.

Your task is to create a well-structured summary of the following document. The summary should:
- Capture the main ideas and key points
- Maintain the logical flow of the original document
- Be approximately 20-25%% of the original length
- Be written in clear, concise language

Document:
%s

Comprehensive Summary:`

const detailedSummaryTemplate = `You are an expert at creating detailed, structured summaries of documents.

Create a detailed summary of the following document with these sections:

1. **Executive Summary**: One paragraph overview
2. **Key Points**: Bullet points of main ideas
3. **Important Details**: Significant facts, figures, and findings
4. **Conclusions/Recommendations**: If applicable

Document:
%s

Detailed Summary:`

const mapSummaryTemplate = `You are creating a summary of a section of a larger document.

Summarize the key points from this section concisely:

%s

Section Summary:`

const reduceSummaryTemplate = `You are combining multiple section summaries into a cohesive final summary.

Given these section summaries from a document, create a unified summary that:
- Combines and synthesizes the information
- Eliminates redundancy
- Maintains logical flow
- Preserves all important information

Section Summaries:
%s

Final Combined Summary:`

const answerTemplate = `You are a helpful AI assistant that answers questions based on provided context and always cites sources.

Use the following pieces of context to answer the question. Each piece of context has a source identifier.

For your answer:
1. Provide a clear, concise answer to the question
2. Cite which sources (by ID) you used
3. If the context doesn't contain enough information, say so

Context:
%s

Question: %s

Answer (with source citations):`

// NoAnswerText is returned when retrieval finds nothing relevant enough to
// ground an answer. No model call is made in that case.
const NoAnswerText = "I don't have enough information in the provided documents to answer this question."

// SummaryPrompt builds the single-pass summarization prompt for a tier.
func SummaryPrompt(length domain.SummaryLength, text string) string {
	switch length {
	case domain.SummaryLengthBrief:
		return fmt.Sprintf(briefSummaryTemplate, text)
	case domain.SummaryLengthDetailed:
		return fmt.Sprintf(detailedSummaryTemplate, text)
	default:
		return fmt.Sprintf(standardSummaryTemplate, text)
	}
}

// MapSummaryPrompt builds the per-section prompt for map-reduce summarization.
func MapSummaryPrompt(section string) string {
	return fmt.Sprintf(mapSummaryTemplate, section)
}

// ReduceSummaryPrompt builds the combine prompt over section summaries.
func ReduceSummaryPrompt(sectionSummaries []string) string {
	return fmt.Sprintf(reduceSummaryTemplate, strings.Join(sectionSummaries, "\n\n"))
}

// AnswerPrompt builds the question-answering prompt from retrieved results.
// Each result is labeled with a numeric source identifier matching the
// citations returned alongside the answer.
func AnswerPrompt(question string, results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d: %s]\n%s", i+1, r.Source, r.Content)
	}
	return fmt.Sprintf(answerTemplate, b.String(), question)
}
