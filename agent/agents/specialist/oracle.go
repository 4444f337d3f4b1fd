package specialist

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

type oracleImpl struct {
	runner       compose.Runnable[map[string]any, string]
	intentPrompt string
	timeout      time.Duration
}

var _ contractx.Oracle = (*oracleImpl)(nil)

func newOracle(ctx context.Context, chatModel einomodel.BaseChatModel, intentPrompt string, timeout time.Duration) (*oracleImpl, error) {
	runner, err := compileOracleGraph(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &oracleImpl{runner: runner, intentPrompt: intentPrompt, timeout: timeout}, nil
}

func (o *oracleImpl) ClassifyIntent(ctx context.Context, lastUserMessage string) (string, error) {
	return o.invoke(ctx, o.intentPrompt, lastUserMessage)
}

func (o *oracleImpl) ExtractField(ctx context.Context, excerpt string, instructions string) (string, error) {
	return o.invoke(ctx, instructions, excerpt)
}

func (o *oracleImpl) invoke(ctx context.Context, instructions, input string) (string, error) {
	if strings.TrimSpace(instructions) == "" {
		return "", fmt.Errorf("%w: oracle instructions are empty", contractx.ErrPromptMissing)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	out, err := o.runner.Invoke(ctx, map[string]any{
		oracleInstructionsKey: instructions,
		oracleInputKey:        input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: oracle invoke: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}
