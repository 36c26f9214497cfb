package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"KalshiOracle/internal/adapter/kalshi"
	"KalshiOracle/internal/config"
	"KalshiOracle/internal/service"

	"github.com/gin-gonic/gin"
)

// fakeKalshi 模拟上游：KXHIGHNY-25AUG05 事件已结算，KXHIGHNY-25AUG06 仍在交易
func fakeKalshi(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events/KXHIGHNY-25AUG05", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"event":{"event_ticker":"KXHIGHNY-25AUG05"},"markets":[
			{"ticker":"KXHIGHNY-25AUG05-B82.5","subtitle":"82° to 83°","result":"no"},
			{"ticker":"KXHIGHNY-25AUG05-B84.5","subtitle":"84° to 85°","result":"yes","expiration_value":"84"}
		]}`))
	})
	mux.HandleFunc("/markets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("event_ticker") == "KXHIGHNY-25AUG06" {
			_, _ = w.Write([]byte(`{"markets":[
				{"ticker":"KXHIGHNY-25AUG06-B80.5","subtitle":"80° to 81°","status":"active","yes_bid":20,"yes_ask":24},
				{"ticker":"KXHIGHNY-25AUG06-B82.5","subtitle":"82° to 83°","status":"active","yes_bid":61,"yes_ask":65}
			],"cursor":""}`))
			return
		}
		_, _ = w.Write([]byte(`{"markets":[],"cursor":""}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newE2ERouter(t *testing.T, baseURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testAppConfig()
	cfg.Resolver = config.ResolverConfig{
		TickerPrefixes: []string{"KXHIGHNY", "HIGHNY"},
		SeriesTicker:   "KXHIGHNY",
		SettledStatus:  "settled",
		OpenStatuses:   []string{"open", "active", "trading"},
	}
	log := quietLogger()
	src := kalshi.NewKalshiAdapterWithClient(baseURL, &http.Client{}, log)
	svc := service.NewResolutionService(src, service.NewResolverConfig(cfg.Resolver), log)
	return NewRouter(cfg, NewKalshiHandler(svc, cfg.HTTP, cfg.Kalshi.MarketURL, log), log)
}

func TestEndToEndSettled(t *testing.T) {
	r := newE2ERouter(t, fakeKalshi(t).URL)

	w := do(r, http.MethodGet, "/api/kalshi?date=2025-08-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["label"] != "84° to 85°" || body["exactTemp"] != 84.0 || body["eventTicker"] != "KXHIGHNY-25AUG05" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestEndToEndSettledNoSignal(t *testing.T) {
	r := newE2ERouter(t, fakeKalshi(t).URL)

	// 2025-08-07 的事件在上游不存在，markets 查询为空
	w := do(r, http.MethodGet, "/api/kalshi?date=2025-08-07", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestEndToEndLive(t *testing.T) {
	r := newE2ERouter(t, fakeKalshi(t).URL)

	w := do(r, http.MethodGet, "/api/kalshi-live?date=2025-08-06", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["leadingLabel"] != "82° to 83°" || body["leadingProb"] != 0.63 || body["eventTicker"] != "KXHIGHNY-25AUG06" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestEndToEndUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	r := newE2ERouter(t, srv.URL)

	for _, path := range []string{"/api/kalshi?date=2025-08-05", "/api/kalshi-live?date=2025-08-05"} {
		w := do(r, http.MethodGet, path, nil)
		if w.Code != http.StatusBadGateway {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
		if body := decodeBody(t, w); body["error"] != "Upstream error" {
			t.Errorf("%s: body %v", path, body)
		}
	}
}
