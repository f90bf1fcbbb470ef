package config

import (
	"context"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM holds OpenAI configuration for the navigation agent
type LLM struct {
	APIKey string `masq:"secret"`
	Model  string
}

// Flags returns CLI flags for LLM configuration
func (c *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key for the navigation agent",
			Destination: &c.APIKey,
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model to use",
			Value:       "gpt-4o",
			Destination: &c.Model,
			Sources:     cli.EnvVars("OMFETCH_OPENAI_MODEL"),
		},
	}
}

// Configure builds the LLM client. Returns nil without error when no
// API key is set: the run then falls back to page scanning only.
func (c *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if c.APIKey == "" {
		return nil, nil
	}
	return openai.New(ctx, c.APIKey, openai.WithModel(c.Model))
}
