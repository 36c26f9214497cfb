package service

import (
	"context"
	"errors"

	"KalshiOracle/internal/interfaces"
	"KalshiOracle/internal/model"

	"github.com/sirupsen/logrus"
)

// ErrUpstreamExhausted 所有策略、所有候选的上游请求都失败（而不是成功返回但没有结果）
var ErrUpstreamExhausted = errors.New("upstream exhausted: every query strategy failed")

// Tally 一次策略执行中的上游请求计数
type Tally struct {
	Attempts int
	Failures int
}

func (t *Tally) add(o Tally) {
	t.Attempts += o.Attempts
	t.Failures += o.Failures
}

// QueryStrategy 一种上游查询方式。Resolve 内部吞掉单次请求失败，只通过 Tally 报告
type QueryStrategy interface {
	Name() string
	Resolve(ctx context.Context, candidates []string) (*model.ResolvedOutcome, Tally)
}

// Cascade 按顺序执行策略，第一个给出结果的策略胜出
type Cascade struct {
	strategies []QueryStrategy
	logger     *logrus.Logger
}

func NewCascade(logger *logrus.Logger, strategies ...QueryStrategy) *Cascade {
	return &Cascade{
		strategies: append([]QueryStrategy(nil), strategies...),
		logger:     logger,
	}
}

// Run 返回 (outcome, nil)；无结果为 (nil, nil)；全部请求失败为 ErrUpstreamExhausted；
// ctx 取消时返回 ctx.Err()
func (c *Cascade) Run(ctx context.Context, candidates []string) (*model.ResolvedOutcome, error) {
	var total Tally
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, tally := s.Resolve(ctx, candidates)
		total.add(tally)
		if out != nil {
			c.logger.WithFields(logrus.Fields{
				"strategy":     s.Name(),
				"event_ticker": out.EventTicker,
			}).Info("解析命中")
			return out, nil
		}
		c.logger.WithFields(logrus.Fields{
			"strategy": s.Name(),
			"attempts": tally.Attempts,
			"failures": tally.Failures,
		}).Debug("策略无结果，尝试下一个")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if total.Attempts > 0 && total.Failures == total.Attempts {
		return nil, ErrUpstreamExhausted
	}
	return nil, nil
}

// ========== 具体策略 ==========

// perCandidate 对每个候选 ticker 各发一次请求
type perCandidate struct {
	name   string
	logger *logrus.Logger
	fetch  func(ctx context.Context, eventTicker string) (*model.ResolvedOutcome, error)
}

func (p *perCandidate) Name() string { return p.name }

func (p *perCandidate) Resolve(ctx context.Context, candidates []string) (*model.ResolvedOutcome, Tally) {
	var tally Tally
	for _, t := range candidates {
		if ctx.Err() != nil {
			break
		}
		tally.Attempts++
		out, err := p.fetch(ctx, t)
		if err != nil {
			tally.Failures++
			p.logger.WithError(err).WithFields(logrus.Fields{
				"strategy":     p.name,
				"event_ticker": t,
			}).Warn("上游请求失败，跳过")
			continue
		}
		if out != nil {
			out.EventTicker = t
			return out, tally
		}
	}
	return nil, tally
}

// NewEventStrategy 事件 + 嵌套 markets；事件本身带结算值时直接命中
func NewEventStrategy(src interfaces.MarketSource, logger *logrus.Logger) QueryStrategy {
	return &perCandidate{
		name:   "event_nested_markets",
		logger: logger,
		fetch: func(ctx context.Context, eventTicker string) (*model.ResolvedOutcome, error) {
			resp, err := src.FetchEvent(ctx, eventTicker)
			if err != nil {
				return nil, err
			}
			if resp == nil {
				return nil, nil
			}
			if out := eventLevelOutcome(resp.Event); out != nil {
				return out, nil
			}
			return settledOutcome(resp.NestedMarkets()), nil
		},
	}
}

// NewEventMarketsStrategy 按事件 ticker 列 markets
func NewEventMarketsStrategy(src interfaces.MarketSource, logger *logrus.Logger) QueryStrategy {
	return &perCandidate{
		name:   "markets_by_event",
		logger: logger,
		fetch: func(ctx context.Context, eventTicker string) (*model.ResolvedOutcome, error) {
			markets, err := src.FetchMarketsByEvent(ctx, eventTicker)
			if err != nil {
				return nil, err
			}
			return settledOutcome(markets), nil
		},
	}
}

// seriesStrategy 拉一次系列下已结算的 markets，再按候选 ticker 本地过滤
type seriesStrategy struct {
	src          interfaces.MarketSource
	seriesTicker string
	status       string
	logger       *logrus.Logger
}

func NewSeriesStrategy(src interfaces.MarketSource, seriesTicker, status string, logger *logrus.Logger) QueryStrategy {
	return &seriesStrategy{src: src, seriesTicker: seriesTicker, status: status, logger: logger}
}

func (s *seriesStrategy) Name() string { return "markets_by_series" }

func (s *seriesStrategy) Resolve(ctx context.Context, candidates []string) (*model.ResolvedOutcome, Tally) {
	tally := Tally{Attempts: 1}
	markets, err := s.src.FetchMarketsBySeries(ctx, s.seriesTicker, s.status)
	if err != nil {
		tally.Failures++
		s.logger.WithError(err).WithFields(logrus.Fields{
			"strategy":      s.Name(),
			"series_ticker": s.seriesTicker,
		}).Warn("上游请求失败，跳过")
		return nil, tally
	}
	for _, t := range candidates {
		var matched []model.RawRecord
		for _, m := range markets {
			if m != nil && m.String("event_ticker") == t {
				matched = append(matched, m)
			}
		}
		if out := settledOutcome(matched); out != nil {
			out.EventTicker = t
			return out, tally
		}
	}
	return nil, tally
}
