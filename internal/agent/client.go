// Package agent is the reasoning-service collaborator: it assembles the
// decision context from a record-store snapshot, invokes a Bedrock-hosted
// model, and turns the response into a decision set. Any upstream failure
// degrades to locally generated fallback decisions; nothing in this package
// crashes a cycle.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog"
)

const anthropicVersion = "bedrock-2023-05-31"

// modelInvoker is the slice of the Bedrock runtime API the client uses.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client calls an Anthropic model on the Bedrock runtime.
type Client struct {
	bedrock modelInvoker
	modelID string
	log     zerolog.Logger
}

// NewClient creates a Bedrock client using the default AWS credential chain.
func NewClient(ctx context.Context, region, modelID string, log zerolog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Client{
		bedrock: bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
		log:     log.With().Str("client", "bedrock").Logger(),
	}, nil
}

// newClientWithInvoker wires a fake runtime for tests.
func newClientWithInvoker(invoker modelInvoker, modelID string, log zerolog.Logger) *Client {
	return &Client{
		bedrock: invoker,
		modelID: modelID,
		log:     log.With().Str("client", "bedrock").Logger(),
	}
}

type invokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Invoke sends a single user prompt and returns the model's text response.
func (c *Client) Invoke(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(invokeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		Messages:         []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	output, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model %s: %w", c.modelID, err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("parse model response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("model %s returned empty content", c.modelID)
	}

	return resp.Content[0].Text, nil
}
