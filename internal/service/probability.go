package service

import (
	"KalshiOracle/internal/model"

	"github.com/shopspring/decimal"
)

// Mode 归一化模式
type Mode int

const (
	// SettlementMode 取结算得到的物理量，不是概率
	SettlementMode Mode = iota
	// LiveMode 由盘口推出 0..1 的隐含概率
	LiveMode
)

// FieldRule 从松散记录中取一个数值，取不到返回 false
type FieldRule struct {
	Name    string
	Extract func(m model.RawRecord) (float64, bool)
}

func fieldRule(key string) FieldRule {
	return FieldRule{Name: key, Extract: func(m model.RawRecord) (float64, bool) {
		return m.Number(key)
	}}
}

func pathRule(name string, path ...interface{}) FieldRule {
	return FieldRule{Name: name, Extract: func(m model.RawRecord) (float64, bool) {
		return m.PathNumber(path...)
	}}
}

func settlementRules() []FieldRule {
	return []FieldRule{
		fieldRule("expiration_value"),
		fieldRule("settlement_value"),
	}
}

func bidRules() []FieldRule {
	return []FieldRule{
		fieldRule("yes_bid"),
		fieldRule("yes_bid_dollars"),
		pathRule("order_book.yes.best_bid.price", "order_book", "yes", "best_bid", "price"),
		pathRule("order_book.bids[0].price", "order_book", "bids", 0, "price"),
	}
}

func askRules() []FieldRule {
	return []FieldRule{
		fieldRule("yes_ask"),
		fieldRule("yes_ask_dollars"),
		pathRule("order_book.yes.best_ask.price", "order_book", "yes", "best_ask", "price"),
		pathRule("order_book.asks[0].price", "order_book", "asks", 0, "price"),
	}
}

// firstPresent 按顺序返回第一个取得到的值
func firstPresent(m model.RawRecord, rules []FieldRule) (float64, bool) {
	for _, r := range rules {
		if v, ok := r.Extract(m); ok {
			return v, true
		}
	}
	return 0, false
}

// normalizeUnit (1,100] 视为美分/百分比，除以 100；结果不在 [0,1] 视为缺失
func normalizeUnit(v float64) (float64, bool) {
	if v > 1 && v <= 100 {
		v = v / 100
	}
	if v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}

// Normalize 按模式从单个 market 中取值
func Normalize(m model.RawRecord, mode Mode) (float64, bool) {
	if m == nil {
		return 0, false
	}
	if mode == SettlementMode {
		return firstPresent(m, settlementRules())
	}
	return ImpliedProbability(m)
}

// ImpliedProbability 买一卖一中点；只有一侧时取该侧（买价为下界，卖价为上界）；
// 两侧都缺或盘口交叉返回 false。不使用成交价
func ImpliedProbability(m model.RawRecord) (float64, bool) {
	bid, hasBid := firstPresent(m, bidRules())
	if hasBid {
		bid, hasBid = normalizeUnit(bid)
	}
	ask, hasAsk := firstPresent(m, askRules())
	if hasAsk {
		ask, hasAsk = normalizeUnit(ask)
	}

	switch {
	case hasBid && hasAsk:
		if ask < bid {
			return 0, false
		}
		return (bid + ask) / 2, true
	case hasBid:
		return bid, true
	case hasAsk:
		return ask, true
	default:
		return 0, false
	}
}

// PickLeader 取隐含概率严格最大的 market，相同时保留先出现的
func PickLeader(markets []model.RawRecord) (model.RawRecord, float64, bool) {
	var (
		best     model.RawRecord
		bestProb float64
		found    bool
	)
	for _, m := range markets {
		prob, ok := Normalize(m, LiveMode)
		if !ok {
			continue
		}
		if !found || prob > bestProb {
			best, bestProb, found = m, prob, true
		}
	}
	return best, bestProb, found
}

// RoundProbability 两位小数，四舍五入（远离零）
func RoundProbability(p float64) float64 {
	f, _ := decimal.NewFromFloat(p).Round(2).Float64()
	return f
}
