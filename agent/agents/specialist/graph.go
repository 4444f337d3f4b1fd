package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

const (
	oracleInstructionsKey = "instructions"
	oracleInputKey        = "input"
)

// compileOracleGraph wires template -> model -> content. Instructions are
// bound as template values so JSON examples in them are never parsed.
func compileOracleGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, string], error) {
	template := einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage("{{."+oracleInstructionsKey+"}}"),
		schema.UserMessage("{{."+oracleInputKey+"}}"),
	)

	graph := compose.NewGraph[map[string]any, string]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add oracle prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add oracle model node: %w", err)
	}
	if err := graph.AddLambdaNode("content",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			if msg == nil {
				return "", fmt.Errorf("%w: empty oracle response", contractx.ErrSchemaViolation)
			}
			return strings.TrimSpace(msg.Content), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add oracle content node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add oracle edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add oracle edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "content"); err != nil {
		return nil, fmt.Errorf("add oracle edge model->content: %w", err)
	}
	if err := graph.AddEdge("content", compose.END); err != nil {
		return nil, fmt.Errorf("add oracle edge content->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("oracle.graph"))
	if err != nil {
		return nil, fmt.Errorf("compile oracle graph: %w", err)
	}
	return runner, nil
}

// compileSalesStepGraph runs one tool-calling model step over a prepared
// conversation.
func compileSalesStepGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add sales model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "model"); err != nil {
		return nil, fmt.Errorf("add sales edge start->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add sales edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("sales.step_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile sales step graph: %w", err)
	}
	return runner, nil
}
