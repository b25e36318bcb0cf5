package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/seqkit/pkg/logging"
)

// Pipeline 把预处理拆成可组合的 Stage 链，按顺序执行。
type Pipeline struct {
	Stages []Stage
}

// Run 依次执行所有 Stage；任一 Stage 失败即停止，不做部分恢复。
func (p *Pipeline) Run(ctx context.Context, st *State) (*State, error) {
	if st == nil {
		st = &State{}
	}
	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := stage.Process(ctx, st); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logging.Debug().
			Str("stage", stage.Name()).
			Str("kind", string(stage.Kind())).
			Dur("elapsed", time.Since(start)).
			Msg("stage done")
	}
	return st, nil
}
