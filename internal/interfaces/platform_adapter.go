package interfaces

import (
	"context"

	"KalshiOracle/internal/model"
)

// MarketSource 上游预测市场必须提供的三种查询
type MarketSource interface {
	FetchEvent(ctx context.Context, eventTicker string) (*model.KalshiEventResponse, error)           // 事件 + 嵌套 markets
	FetchMarketsByEvent(ctx context.Context, eventTicker string) ([]model.RawRecord, error)           // 按事件 ticker 列 markets
	FetchMarketsBySeries(ctx context.Context, seriesTicker, status string) ([]model.RawRecord, error) // 按系列 + 状态列 markets
}
