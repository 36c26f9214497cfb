package kalshi

import (
	"KalshiOracle/internal/config"
	"KalshiOracle/internal/utils/httpclient"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"KalshiOracle/internal/interfaces"
	"KalshiOracle/internal/model"

	"github.com/sirupsen/logrus"
)

// Ensure Adapter implements interfaces.MarketSource
var _ interfaces.MarketSource = (*Adapter)(nil)

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("kalshi upstream %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

type Adapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewKalshiAdapter(cfg *config.PlatformConfig, logger *logrus.Logger) *Adapter {
	return NewKalshiAdapterWithClient(cfg.BaseURL, httpclient.NewHTTPClient(cfg, logger), logger)
}

// NewKalshiAdapterWithClient 使用外部传入的 http.Client（测试或共享连接池时用）
func NewKalshiAdapterWithClient(baseURL string, client *http.Client, logger *logrus.Logger) *Adapter {
	return &Adapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// GetName 平台名称
func (k *Adapter) GetName() string {
	return "Kalshi"
}

// FetchEvent GET /events/{event_ticker}?with_nested_markets=true
func (k *Adapter) FetchEvent(ctx context.Context, eventTicker string) (*model.KalshiEventResponse, error) {
	q := url.Values{}
	q.Set("with_nested_markets", "true")
	endpoint := fmt.Sprintf("%s/events/%s?%s", k.baseURL, url.PathEscape(eventTicker), q.Encode())

	var resp model.KalshiEventResponse
	if err := k.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("获取Kalshi事件%s失败: %w", eventTicker, err)
	}
	return &resp, nil
}

// FetchMarketsByEvent GET /markets?event_ticker=
func (k *Adapter) FetchMarketsByEvent(ctx context.Context, eventTicker string) ([]model.RawRecord, error) {
	q := url.Values{}
	q.Set("event_ticker", eventTicker)
	endpoint := fmt.Sprintf("%s/markets?%s", k.baseURL, q.Encode())

	var resp model.KalshiMarketsResponse
	if err := k.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("获取事件%s的markets失败: %w", eventTicker, err)
	}
	return resp.Markets, nil
}

// FetchMarketsBySeries GET /markets?series_ticker=&status=
func (k *Adapter) FetchMarketsBySeries(ctx context.Context, seriesTicker, status string) ([]model.RawRecord, error) {
	q := url.Values{}
	q.Set("series_ticker", seriesTicker)
	if status != "" {
		q.Set("status", status)
	}
	endpoint := fmt.Sprintf("%s/markets?%s", k.baseURL, q.Encode())

	var resp model.KalshiMarketsResponse
	if err := k.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("获取系列%s的markets失败: %w", seriesTicker, err)
	}
	return resp.Markets, nil
}

// getJSON 单次请求，不重试；非 2xx 返回 *UpstreamError
func (k *Adapter) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			k.logger.Errorf("关闭Kalshi响应体失败: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	k.logger.WithField("url", endpoint).Debug("Kalshi请求成功")
	return nil
}
