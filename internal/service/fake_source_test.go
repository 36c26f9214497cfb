package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"KalshiOracle/internal/model"

	"github.com/sirupsen/logrus"
)

var errUpstream = errors.New("upstream returned 503")

// fakeSource 内存版 MarketSource，记录调用顺序
type fakeSource struct {
	mu sync.Mutex

	events         map[string]*model.KalshiEventResponse
	eventErr       map[string]error
	marketsByEvent map[string][]model.RawRecord
	marketsErr     map[string]error
	series         []model.RawRecord
	seriesErr      error

	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events:         map[string]*model.KalshiEventResponse{},
		eventErr:       map[string]error{},
		marketsByEvent: map[string][]model.RawRecord{},
		marketsErr:     map[string]error{},
	}
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) FetchEvent(ctx context.Context, eventTicker string) (*model.KalshiEventResponse, error) {
	f.record("event:" + eventTicker)
	if err := f.eventErr[eventTicker]; err != nil {
		return nil, err
	}
	if resp, ok := f.events[eventTicker]; ok {
		return resp, nil
	}
	return &model.KalshiEventResponse{}, nil
}

func (f *fakeSource) FetchMarketsByEvent(ctx context.Context, eventTicker string) ([]model.RawRecord, error) {
	f.record("markets:" + eventTicker)
	if err := f.marketsErr[eventTicker]; err != nil {
		return nil, err
	}
	return f.marketsByEvent[eventTicker], nil
}

func (f *fakeSource) FetchMarketsBySeries(ctx context.Context, seriesTicker, status string) ([]model.RawRecord, error) {
	f.record("series:" + seriesTicker + ":" + status)
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	return f.series, nil
}

func (f *fakeSource) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() ResolverConfig {
	return ResolverConfig{
		TickerPrefixes: []string{"KXHIGHNY", "HIGHNY"},
		SeriesTicker:   "KXHIGHNY",
		SettledStatus:  "settled",
		OpenStatuses:   []string{"open", "trading", "active"},
	}
}

// records 用 JSON 构造记录，保持与上游解码后的类型一致
func records(t *testing.T, s string) []model.RawRecord {
	t.Helper()
	var out []model.RawRecord
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	return out
}

func record(t *testing.T, s string) model.RawRecord {
	t.Helper()
	var out model.RawRecord
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
