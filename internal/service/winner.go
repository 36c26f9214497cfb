package service

import (
	"strings"

	"KalshiOracle/internal/model"
)

// WinnerRule 选中结算 market 所用的规则
type WinnerRule int

const (
	RuleNone WinnerRule = iota
	// RuleResultYes result == "yes"
	RuleResultYes
	// RuleSettlementValue settlement_value 非 null
	RuleSettlementValue
	// RuleSettledStatus status 为 finalized/settled
	RuleSettledStatus
)

func (r WinnerRule) String() string {
	switch r {
	case RuleResultYes:
		return "result_yes"
	case RuleSettlementValue:
		return "settlement_value"
	case RuleSettledStatus:
		return "settled_status"
	default:
		return "none"
	}
}

type winnerPredicate struct {
	rule  WinnerRule
	match func(m model.RawRecord) bool
}

// winnerPolicy 规则按强弱排列
func winnerPolicy() []winnerPredicate {
	return []winnerPredicate{
		{RuleResultYes, func(m model.RawRecord) bool {
			result, ok := m["result"].(string)
			return ok && result == "yes"
		}},
		{RuleSettlementValue, func(m model.RawRecord) bool {
			return m.Has("settlement_value")
		}},
		{RuleSettledStatus, func(m model.RawRecord) bool {
			status := strings.ToLower(m.String("status"))
			return status == "finalized" || status == "settled"
		}},
	}
}

// PickWinner 依次应用规则，返回第一条命中规则下的第一个 market。
// 同一规则命中多个时按上游返回顺序取第一个
func PickWinner(markets []model.RawRecord) (model.RawRecord, WinnerRule) {
	if len(markets) == 0 {
		return nil, RuleNone
	}
	for _, p := range winnerPolicy() {
		for _, m := range markets {
			if m != nil && p.match(m) {
				return m, p.rule
			}
		}
	}
	return nil, RuleNone
}
