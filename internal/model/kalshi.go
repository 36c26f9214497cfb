package model

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// RawRecord 上游原始记录（market 或 event）。Kalshi 的字段名、类型随版本变化，
// 因此保持松散结构，由 service 层的字段提取规则按优先级取值
type RawRecord map[string]interface{}

// ========== Kalshi 官方 API 响应结构 ==========

// KalshiEventResponse GET /events/{event_ticker}?with_nested_markets=true 的根响应
type KalshiEventResponse struct {
	Event   RawRecord   `json:"event"`
	Markets []RawRecord `json:"markets,omitempty"` // 旧版接口把 markets 放在根上
}

// NestedMarkets 优先取 event.markets，没有时退回根上的 markets
func (r *KalshiEventResponse) NestedMarkets() []RawRecord {
	if r == nil {
		return nil
	}
	if nested, ok := r.Event["markets"].([]interface{}); ok {
		out := make([]RawRecord, 0, len(nested))
		for _, m := range nested {
			if rec, ok := m.(map[string]interface{}); ok {
				out = append(out, rec)
			}
		}
		return out
	}
	return r.Markets
}

// KalshiMarketsResponse GET /markets 的根响应
type KalshiMarketsResponse struct {
	Markets []RawRecord `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// Has 字段存在且非 null
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String 取字符串字段；缺失或非字符串返回空串
func (r RawRecord) String(key string) string {
	if !r.Has(key) {
		return ""
	}
	s, err := cast.ToStringE(r[key])
	if err != nil {
		return ""
	}
	return s
}

// Number 取有限数值字段，兼容数字与数字字符串
func (r RawRecord) Number(key string) (float64, bool) {
	if !r.Has(key) {
		return 0, false
	}
	return ToFinite(r[key])
}

// Path 沿嵌套路径取值，路径元素为 string（对象键）或 int（数组下标）
func (r RawRecord) Path(path ...interface{}) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(r)
	for _, p := range path {
		switch k := p.(type) {
		case string:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil, false
			}
			v, ok := obj[k]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case int:
			arr, ok := cur.([]interface{})
			if !ok || k < 0 || k >= len(arr) || arr[k] == nil {
				return nil, false
			}
			cur = arr[k]
		default:
			return nil, false
		}
	}
	return cur, true
}

// PathNumber 沿嵌套路径取有限数值
func (r RawRecord) PathNumber(path ...interface{}) (float64, bool) {
	v, ok := r.Path(path...)
	if !ok {
		return 0, false
	}
	return ToFinite(v)
}

// ToFinite 任意 JSON 值转为有限 float64；NaN/Inf/无法解析视为缺失
func ToFinite(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil, bool, map[string]interface{}, []interface{}:
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
