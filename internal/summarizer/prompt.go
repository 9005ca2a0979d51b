package summarizer

import (
	"fmt"
	"strings"
)

const summaryPrompt = `You are an assistant that writes meeting minutes from recorded conversations.
Summarize the transcript below in the same language as the transcript.

Requirements:
- Start with a one-line heading describing the topic of the recording
- List every agenda item and decision in the order they were discussed
- Call out action items with the responsible speaker when it can be inferred
- Keep proper nouns and technical terms exactly as spoken
- Use markdown: headings, bullet points, bold for key terms
- End with a "Notes" section if anything needs follow-up

Transcript:
---
%s
---`

func buildPrompt(transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("%w: %w", ErrSummarization, ErrEmptyTranscript)
	}
	return fmt.Sprintf(summaryPrompt, transcript), nil
}
