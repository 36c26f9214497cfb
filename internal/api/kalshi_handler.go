package api

import (
	"errors"
	"net/http"

	"KalshiOracle/internal/config"
	"KalshiOracle/internal/interfaces"
	"KalshiOracle/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const badDateMessage = "Missing or bad ?date=YYYY-MM-DD"

// KalshiHandler 提供给天气看板的结算/领先查询接口
type KalshiHandler struct {
	resolver  interfaces.OutcomeResolver
	httpCfg   config.HTTPConfig
	marketURL string
	logger    *logrus.Logger
}

// NewKalshiHandler 创建 KalshiHandler
func NewKalshiHandler(resolver interfaces.OutcomeResolver, httpCfg config.HTTPConfig, marketURL string, logger *logrus.Logger) *KalshiHandler {
	return &KalshiHandler{
		resolver:  resolver,
		httpCfg:   httpCfg,
		marketURL: marketURL,
		logger:    logger,
	}
}

type dateQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// SettledResponse 结算结果
type SettledResponse struct {
	Label       string   `json:"label"`
	ExactTemp   *float64 `json:"exactTemp"`
	EventTicker string   `json:"eventTicker"`
	URL         string   `json:"url"`
}

// LiveResponse 当前领先区间
type LiveResponse struct {
	EventTicker  string  `json:"eventTicker"`
	LeadingLabel string  `json:"leadingLabel"`
	LeadingProb  float64 `json:"leadingProb"`
	URL          string  `json:"url"`
}

// GetSettled 某日结算结果
// GET /api/kalshi?date=2025-08-05
func (h *KalshiHandler) GetSettled(c *gin.Context) {
	var q dateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": badDateMessage})
		return
	}

	out, err := h.resolver.ResolveSettled(c.Request.Context(), q.Date)
	if err != nil {
		h.upstreamError(c, "ResolveSettled", q.Date, err)
		return
	}

	c.Header("Cache-Control", h.httpCfg.SettledCacheControl)
	if out == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, SettledResponse{
		Label:       out.Label,
		ExactTemp:   out.ExactValue,
		EventTicker: out.EventTicker,
		URL:         h.marketURL,
	})
}

// GetLive 某日当前隐含概率最高的区间
// GET /api/kalshi-live?date=2025-08-05
func (h *KalshiHandler) GetLive(c *gin.Context) {
	c.Header("Cache-Control", h.httpCfg.LiveCacheControl)

	var q dateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": badDateMessage})
		return
	}

	out, err := h.resolver.ResolveLeading(c.Request.Context(), q.Date)
	if err != nil {
		h.upstreamError(c, "ResolveLeading", q.Date, err)
		return
	}
	if out == nil || out.LeadingProbability == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, LiveResponse{
		EventTicker:  out.EventTicker,
		LeadingLabel: out.Label,
		LeadingProb:  *out.LeadingProbability,
		URL:          h.marketURL,
	})
}

func (h *KalshiHandler) upstreamError(c *gin.Context, op, date string, err error) {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"date":       date,
		"request_id": c.GetString(requestIDKey),
	}).Error("解析失败")

	switch {
	case errors.Is(err, service.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": badDateMessage})
	case errors.Is(err, service.ErrUpstreamExhausted):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream error"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream error", "details": err.Error()})
	}
}
