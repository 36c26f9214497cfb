package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDate 日期不是 YYYY-MM-DD；正常情况下 HTTP 层已校验，不会进入这里
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// TickerSynthesizer 由日期生成候选事件 ticker。前缀顺序即尝试顺序，
// 新增命名规则只需在配置里追加前缀
type TickerSynthesizer struct {
	prefixes []string
}

// NewTickerSynthesizer 复制前缀列表，构造后不可变
func NewTickerSynthesizer(prefixes []string) *TickerSynthesizer {
	return &TickerSynthesizer{prefixes: append([]string(nil), prefixes...)}
}

// Candidates 2025-08-05 → [KXHIGHNY-25AUG05, HIGHNY-25AUG05]
func (s *TickerSynthesizer) Candidates(dateISO string) ([]string, error) {
	suffix, err := dateSuffix(dateISO)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s.prefixes))
	for _, p := range s.prefixes {
		out = append(out, p+"-"+suffix)
	}
	return out, nil
}

// dateSuffix 返回 yyMONdd
func dateSuffix(dateISO string) (string, error) {
	parts := strings.Split(dateISO, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, dateISO)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, dateISO)
		}
	}
	month, _ := strconv.Atoi(parts[1])
	mon, ok := monthAbbr(month)
	if !ok {
		return "", fmt.Errorf("%w: month out of range in %q", ErrInvalidDate, dateISO)
	}
	return parts[0][2:] + mon + parts[2], nil
}

func monthAbbr(month int) (string, bool) {
	names := [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
	if month < 1 || month > len(names) {
		return "", false
	}
	return names[month-1], true
}
