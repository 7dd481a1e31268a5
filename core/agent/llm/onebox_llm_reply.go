package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/18vikastg/onebox/core/domain"

	openai "github.com/sashabaranov/go-openai"
)

const maxReplyExemplars = 2

const replyPromptTemplate = `You help write professional email replies. Ground your answer in the scenarios and templates below.

CONTEXT AND TEMPLATES:
%s

INCOMING EMAIL:
From: %s
Subject: %s
Content: %s

USER INFORMATION:
Name: %s
Email: %s
Phone: %s
Calendar Link: %s
Current Role: %s

INSTRUCTIONS:
1. Write a professional reply that fits the incoming email
2. Use the user's information where it is relevant
3. Match the tone of the sender
4. Include the calendar link when scheduling comes up
5. Stay concise and warm
6. Do not exceed 150 words

Reply:`

// SynthesizeReply drafts a reply from the top exemplars.
func (c *Client) SynthesizeReply(ctx context.Context, req *domain.ReplyRequest, exemplars []domain.SimilarityMatch, user domain.UserContext) (string, error) {
	if len(exemplars) > maxReplyExemplars {
		exemplars = exemplars[:maxReplyExemplars]
	}

	var sb strings.Builder
	for i, ex := range exemplars {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Scenario: %s\nTemplate: %s", ex.Entry.ScenarioID, ex.Entry.TemplateBody)
	}

	prompt := fmt.Sprintf(replyPromptTemplate,
		sb.String(),
		req.Sender, req.Subject, req.Body,
		user.Name, user.Email, user.Phone, user.CalendarLink, user.CurrentRole,
	)

	return c.completion(ctx, "reply", openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.replyMaxTokens,
		Temperature: c.replyTemperature,
	})
}
