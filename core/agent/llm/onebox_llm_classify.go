package llm

import (
	"context"
	"fmt"

	"github.com/18vikastg/onebox/core/domain"

	openai "github.com/sashabaranov/go-openai"
)

const classifySystemPrompt = "You are an expert email classifier. Respond with only the category name."

const classifyPromptTemplate = `Classify this email into exactly one of these categories:
- Interested
- Meeting Booked
- Not Interested
- Spam
- Out of Office

Email:
Subject: %s
Sender: %s
Content: %s

Guidelines:
- Interested: shows interest in the product or service, asks questions, wants more information
- Meeting Booked: contains a meeting invite, calendar link or a scheduled call
- Not Interested: explicitly declines or asks to be removed
- Spam: promotional content, suspicious offers, unrelated marketing
- Out of Office: automatic reply announcing an absence

Return only the category name, nothing else.`

// ClassifyLabel asks the model for one label and returns its trimmed answer.
// The answer is not validated here.
func (c *Client) ClassifyLabel(ctx context.Context, msg *domain.NormalizedMessage) (string, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate,
		msg.Subject, msg.Sender, truncateBody(msg.Body, c.classifyBodyLimit))

	return c.completion(ctx, "classify", openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.classifyMaxTokens,
		Temperature: c.classifyTemperature,
	})
}
