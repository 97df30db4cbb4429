package ai

import (
	"fmt"
	"strings"

	"learnhub/internal/contextstore"
)

// Responder composes the study assistant's reply from a query and retrieved
// context. It is a replaceable strategy: the template implementation below
// stands in for a future language-model call without callers knowing which
// one they talk to.
type Responder interface {
	Respond(query string, contexts []contextstore.Result) string
}

// TemplateResponder builds a deterministic templated answer from the top
// retrieved contexts.
type TemplateResponder struct{}

const responseSnippetLimit = 500

func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

func (r *TemplateResponder) Respond(query string, contexts []contextstore.Result) string {
	if len(contexts) == 0 {
		return onboardingResponse(query)
	}

	blocks := make([]string, 0, 2)
	for _, ctx := range contexts {
		if len(blocks) == 2 {
			break
		}
		label := ctx.Metadata["type"]
		if label == "" {
			label = "source"
		}
		blocks = append(blocks, fmt.Sprintf("From %s:\n%s", label, truncateRunes(ctx.Content, responseSnippetLimit)))
	}

	var sb strings.Builder
	sb.WriteString("Based on the content you've been learning:\n\n")
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString(fmt.Sprintf("\n\nRegarding your question %q:\n\n", query))
	sb.WriteString(`This is a simplified response. In production, this would use a proper language model to generate detailed, contextual answers based on your learning materials.

Key points from your learning context:
- The content covers topics you've been studying
- This answer is based on videos and documents you've accessed
- Continue learning to get more personalized responses
`)
	return sb.String()
}

func onboardingResponse(query string) string {
	return fmt.Sprintf(`I'm your AI study assistant! I can help answer questions based on:
- Videos you've watched
- Documents you've uploaded

To get better, personalized answers:
1. Watch some videos on the platform
2. Upload documents you're studying
3. Ask me questions related to what you've learned

Your question: %q

Once you start learning on the platform, I'll be able to provide context-aware answers!`, query)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
