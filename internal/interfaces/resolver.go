package interfaces

import (
	"context"

	"KalshiOracle/internal/model"
)

// OutcomeResolver 对外暴露的解析能力；(nil, nil) 表示暂无结果
type OutcomeResolver interface {
	ResolveSettled(ctx context.Context, dateISO string) (*model.ResolvedOutcome, error)
	ResolveLeading(ctx context.Context, dateISO string) (*model.ResolvedOutcome, error)
}
