package service

import (
	"context"
	"fmt"
	"strings"

	"KalshiOracle/internal/config"
	"KalshiOracle/internal/interfaces"
	"KalshiOracle/internal/model"

	"github.com/sirupsen/logrus"
)

// Ensure ResolutionService implements interfaces.OutcomeResolver
var _ interfaces.OutcomeResolver = (*ResolutionService)(nil)

// ResolverConfig 解析引擎的不可变配置
type ResolverConfig struct {
	TickerPrefixes []string
	SeriesTicker   string
	SettledStatus  string
	OpenStatuses   []string
}

// NewResolverConfig 从全局配置复制一份，之后修改全局配置不影响引擎
func NewResolverConfig(c config.ResolverConfig) ResolverConfig {
	return ResolverConfig{
		TickerPrefixes: append([]string(nil), c.TickerPrefixes...),
		SeriesTicker:   c.SeriesTicker,
		SettledStatus:  c.SettledStatus,
		OpenStatuses:   append([]string(nil), c.OpenStatuses...),
	}
}

// ResolutionService 结算结果与当前领先区间的解析引擎。每次调用互不影响，可并发使用
type ResolutionService struct {
	source       interfaces.MarketSource
	tickers      *TickerSynthesizer
	cascade      *Cascade
	openStatuses map[string]bool
	logger       *logrus.Logger
}

// NewResolutionService 创建解析引擎；级联顺序：事件嵌套 markets → 按事件列 markets → 系列兜底
func NewResolutionService(source interfaces.MarketSource, cfg ResolverConfig, logger *logrus.Logger) *ResolutionService {
	open := make(map[string]bool, len(cfg.OpenStatuses))
	for _, s := range cfg.OpenStatuses {
		open[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return &ResolutionService{
		source:  source,
		tickers: NewTickerSynthesizer(cfg.TickerPrefixes),
		cascade: NewCascade(logger,
			NewEventStrategy(source, logger),
			NewEventMarketsStrategy(source, logger),
			NewSeriesStrategy(source, cfg.SeriesTicker, cfg.SettledStatus, logger),
		),
		openStatuses: open,
		logger:       logger,
	}
}

// ResolveSettled 某日事件结算到了哪个区间、具体数值是多少
func (s *ResolutionService) ResolveSettled(ctx context.Context, dateISO string) (*model.ResolvedOutcome, error) {
	candidates, err := s.tickers.Candidates(dateISO)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"date":       dateISO,
		"candidates": candidates,
	}).Debug("开始解析结算结果")

	out, err := s.cascade.Run(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("解析%s结算结果失败: %w", dateISO, err)
	}
	return out, nil
}

// ResolveLeading 某日事件当前隐含概率最高的区间。只查第一个候选 ticker 的 markets 列表
func (s *ResolutionService) ResolveLeading(ctx context.Context, dateISO string) (*model.ResolvedOutcome, error) {
	candidates, err := s.tickers.Candidates(dateISO)
	if err != nil {
		return nil, err
	}
	eventTicker := candidates[0]

	markets, err := s.source.FetchMarketsByEvent(ctx, eventTicker)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamExhausted, err)
	}
	if len(markets) == 0 {
		return nil, nil
	}

	pool := s.openMarkets(markets)
	leader, prob, ok := PickLeader(pool)
	if !ok {
		s.logger.WithField("event_ticker", eventTicker).Debug("没有可用盘口")
		return nil, nil
	}

	rounded := RoundProbability(prob)
	s.logger.WithFields(logrus.Fields{
		"event_ticker":  eventTicker,
		"market_ticker": leader.String("ticker"),
		"probability":   rounded,
	}).Info("领先区间")
	return &model.ResolvedOutcome{
		Label:              labelOf(leader, "Range"),
		EventTicker:        eventTicker,
		MarketTicker:       leader.String("ticker"),
		LeadingProbability: &rounded,
	}, nil
}

// openMarkets 过滤出可交易状态；一个都没有时退回全部（兼容未知状态词）
func (s *ResolutionService) openMarkets(markets []model.RawRecord) []model.RawRecord {
	var open []model.RawRecord
	for _, m := range markets {
		if m == nil {
			continue
		}
		if s.openStatuses[strings.ToLower(strings.TrimSpace(m.String("status")))] {
			open = append(open, m)
		}
	}
	if len(open) == 0 {
		return markets
	}
	return open
}

// ========== 结果组装 ==========

// settledOutcome 选出结算 market 并组装结果，选不出返回 nil
func settledOutcome(markets []model.RawRecord) *model.ResolvedOutcome {
	winner, rule := PickWinner(markets)
	if rule == RuleNone {
		return nil
	}
	out := &model.ResolvedOutcome{
		Label:        labelOf(winner, "Settled"),
		MarketTicker: winner.String("ticker"),
	}
	if v, ok := Normalize(winner, SettlementMode); ok {
		out.ExactValue = &v
	}
	return out
}

// eventLevelOutcome 事件本身带结算值时直接使用，不需要挑 market
func eventLevelOutcome(event model.RawRecord) *model.ResolvedOutcome {
	if event == nil {
		return nil
	}
	v, ok := Normalize(event, SettlementMode)
	if !ok {
		return nil
	}
	label := firstNonEmpty(event, "subtitle", "sub_title", "title")
	if label == "" {
		label = "Settled"
	}
	return &model.ResolvedOutcome{Label: label, ExactValue: &v}
}

// labelOf subtitle → title → ticker → fallback
func labelOf(m model.RawRecord, fallback string) string {
	if label := firstNonEmpty(m, "subtitle", "title", "ticker"); label != "" {
		return label
	}
	return fallback
}

func firstNonEmpty(m model.RawRecord, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m.String(k)); v != "" {
			return v
		}
	}
	return ""
}
