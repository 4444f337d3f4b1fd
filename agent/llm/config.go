package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/openrouter"
)

// Config is read with the LLM prefix. An empty API key runs the service
// offline: keyword intent classification, pattern extractors and no agent
// turn model.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	OracleModel       string        `envconfig:"ORACLE_MODEL" split_words:"true"`
	SalesModel        string        `envconfig:"SALES_MODEL" split_words:"true"`
	OracleTemperature float32       `envconfig:"ORACLE_TEMPERATURE" split_words:"true" default:"0"`
	SalesTemperature  float32       `envconfig:"SALES_TEMPERATURE" split_words:"true" default:"-1"`
	OracleTimeout     time.Duration `envconfig:"ORACLE_TIMEOUT" split_words:"true" default:"10s"`
	MaxToolSteps      int           `envconfig:"MAX_TOOL_STEPS" split_words:"true" default:"4"`
	ProbeModel        bool          `envconfig:"PROBE_MODEL" split_words:"true" default:"false"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxToolSteps <= 0 {
		return fmt.Errorf("%w: max tool steps must be positive, got %d", contractx.ErrValidation, c.MaxToolSteps)
	}
	return nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeOracle:
		if v := strings.TrimSpace(c.OracleModel); v != "" {
			modelName = v
		}
		if c.OracleTemperature >= 0 {
			temp = c.OracleTemperature
		}
	case contractx.AgentTypeSales:
		if v := strings.TrimSpace(c.SalesModel); v != "" {
			modelName = v
		}
		if c.SalesTemperature >= 0 {
			temp = c.SalesTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
