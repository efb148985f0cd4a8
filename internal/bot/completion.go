package bot

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Turn is one entry of the conversation window handed to the model.
type Turn struct {
	FromBot bool
	Content string
}

// Completer produces a reply for a conversation window. An empty string means
// the model declined and the bot stays silent.
type Completer interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}

const completionTimeout = 30 * time.Second

// OpenAICompleter talks to the chat completion API with a rotating key ring.
type OpenAICompleter struct {
	ring  *KeyRing
	model string
}

func NewOpenAICompleter(ring *KeyRing, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{ring: ring, model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.FromBot {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: t.Content,
		})
	}

	client := openai.NewClient(c.ring.Next())
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: 160,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
