package model

// ResolvedOutcome 一次解析的结果：结算值或当前领先区间
type ResolvedOutcome struct {
	Label              string   `json:"label"`
	EventTicker        string   `json:"event_ticker"`                  // 实际命中的事件 ticker
	MarketTicker       string   `json:"market_ticker,omitempty"`       // 被选中的 market，事件级结算时为空
	ExactValue         *float64 `json:"exact_value,omitempty"`         // 结算得到的物理量（如最高气温），只在有限值时出现
	LeadingProbability *float64 `json:"leading_probability,omitempty"` // 领先区间的隐含概率，[0,1]，保留两位小数
}
