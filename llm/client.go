// Package llm talks to an OpenAI compatible API for the rewrite steps, the
// title embeddings and the bot presence line.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"news-forum-bot/models"

	openai "github.com/sashabaranov/go-openai"
)

// GamePrefix marks a status line that should be shown as a game activity.
const GamePrefix = "正在玩"

// ErrEmptyResponse is returned when the model answers with no choices or no
// embedding data.
var ErrEmptyResponse = errors.New("empty response from model")

// Client implements the rewrite steps and title embeddings on go-openai.
type Client struct {
	api              *openai.Client
	chatModel        string
	embeddingModel   string
	prompts          Prompts
	commentatorIndex int
}

// NewClient builds a client from the openai config section.
func NewClient(cfg models.OpenAIConfig, prompts Prompts) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:              openai.NewClientWithConfig(clientConfig),
		chatModel:        cfg.ChatModel,
		embeddingModel:   cfg.EmbeddingModel,
		prompts:          prompts,
		commentatorIndex: cfg.CommentatorIndex,
	}
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CleanContent removes ads and unrelated paragraphs.
func (c *Client) CleanContent(ctx context.Context, content string) (string, error) {
	return c.chat(ctx, c.prompts.Clean, content)
}

// RewriteTitle writes an informative, non clickbait title.
func (c *Client) RewriteTitle(ctx context.Context, title, content string) (string, error) {
	return c.chat(ctx, c.prompts.Title, fmt.Sprintf("\n\n原標題:\n%s\n\n內文:\n%s", title, content))
}

// RewriteContent writes a concise version of the content.
func (c *Client) RewriteContent(ctx context.Context, content string) (string, error) {
	return c.chat(ctx, c.prompts.Content, "\n\n內文:\n"+content)
}

// Commentary writes a short opinion in the configured commentator persona.
func (c *Client) Commentary(ctx context.Context, title, content string) (string, error) {
	return c.chat(ctx, c.prompts.Commentator(c.commentatorIndex), fmt.Sprintf("標題:\n%s\n\n內文:\n%s", title, content))
}

// SelectTags asks the model to pick tag names from available.
func (c *Client) SelectTags(ctx context.Context, available []string, content string) ([]string, error) {
	list, err := json.Marshal(available)
	if err != nil {
		return nil, err
	}
	answer, err := c.chat(ctx, c.prompts.Tags, fmt.Sprintf("標籤列表:\n%s\n\n內文:\n%s", list, content))
	if err != nil {
		return nil, err
	}
	return ParseTagList(answer)
}

// ParseTagList decodes a JSON list of tag names, tolerating a surrounding
// markdown code fence.
func ParseTagList(answer string) ([]string, error) {
	answer = strings.TrimSpace(answer)
	if strings.HasPrefix(answer, "```") {
		answer = strings.TrimPrefix(answer, "```")
		answer = strings.TrimPrefix(answer, "json")
		answer = strings.TrimSuffix(strings.TrimSpace(answer), "```")
	}

	var tags []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &tags); err != nil {
		return nil, fmt.Errorf("invalid tag list %q: %w", answer, err)
	}
	return tags, nil
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}

// StatusLine writes a short presence line inspired by a news title.
func (c *Client) StatusLine(ctx context.Context, title string) (string, error) {
	return c.chat(ctx, c.prompts.Status, title)
}

// ParseStatus splits a status line into its display text and whether it
// should be shown as a game activity.
func ParseStatus(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, GamePrefix); ok {
		rest = strings.TrimLeft(rest, " ：:")
		if rest != "" {
			return rest, true
		}
	}
	return line, false
}
