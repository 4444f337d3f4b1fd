package specialist

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	llmx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/llm"
	promptx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
)

// Registry holds the language-model backed collaborators of a turn. Oracle is
// nil when the service runs offline.
type Registry struct {
	oracle contractx.Oracle
	sales  Agent
}

func (r *Registry) Oracle() contractx.Oracle {
	return r.oracle
}

func (r *Registry) Sales() Agent {
	return r.sales
}

func (r *Registry) Online() bool {
	return r.oracle != nil
}

func NewOfflineRegistry() *Registry {
	return &Registry{sales: KeywordAgent{}}
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return NewOfflineRegistry(), nil
	}

	prompts := promptx.LoadPromptSet()

	oracleModelCfg := cfg.OpenRouterFor(contractx.AgentTypeOracle)
	oracleModel, err := oracleModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create oracle model: %v", contractx.ErrModelInvoke, err)
	}
	salesModelCfg := cfg.OpenRouterFor(contractx.AgentTypeSales)
	salesModel, err := salesModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create sales model: %v", contractx.ErrModelInvoke, err)
	}

	oracle, err := newOracle(ctx, oracleModel, prompts.Intent, cfg.OracleTimeout)
	if err != nil {
		return nil, err
	}
	sales, err := newSalesAgent(ctx, salesModel, prompts.Sales, cfg.MaxToolSteps)
	if err != nil {
		return nil, err
	}

	return &Registry{oracle: oracle, sales: sales}, nil
}
