package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	nodex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/nodes"
)

// pipeline runs guards in order until one asks. The asking guard's message
// becomes the assistant reply of the turn.
type pipeline struct {
	guards []nodex.Guard
	deps   nodex.Deps
}

func newPipeline(requirePayment bool, deps nodex.Deps) pipeline {
	return pipeline{guards: nodex.Pipeline(requirePayment), deps: deps}
}

func (p pipeline) run(ctx context.Context, in *nodex.TurnState) error {
	logger := zerolog.Ctx(ctx)
	for _, g := range p.guards {
		out, err := g.Run(ctx, in, p.deps)
		if err != nil {
			return fmt.Errorf("%s: %w", g.Name, err)
		}
		if !out.IsAsk() {
			continue
		}
		in.Session.Append(schema.AssistantMessage(out.Message, nil))
		in.AskedBy = g.Name
		logger.Debug().
			Str("guard", g.Name).
			Str("stage", string(in.Session.Profile.Stage)).
			Msg("guard ended turn")
		return nil
	}
	return nil
}
