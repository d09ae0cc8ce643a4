package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesapi/internal/domain/dto"
	"github.com/guttosm/tradesapi/internal/logger"
	"github.com/guttosm/tradesapi/internal/middleware"
	"github.com/guttosm/tradesapi/internal/service"
)

// Handler provides HTTP handlers for the trades collection.
//
// Responsibilities:
//   - Decode path ids and JSON bodies
//   - Delegate to the trade service
//   - Map service errors to the fixed client messages
type Handler struct {
	svc service.TradeService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.TradeService) *Handler {
	return &Handler{svc: svc}
}

// ListTrades godoc
// @Summary      List trades
// @Description  Returns every stored trade in insertion order
// @Tags         trades
// @Produce      json
// @Success      200  {object}  dto.TradesResponse
// @Router       /trades [get]
func (h *Handler) ListTrades(c *gin.Context) {
	c.JSON(http.StatusOK, dto.TradesResponse{Trades: h.svc.List(c.Request.Context())})
}

// GetTrade godoc
// @Summary      Get trade by id
// @Tags         trades
// @Produce      json
// @Param        id   path      int  true  "Trade id"
// @Success      200  {object}  models.Trade
// @Failure      404  {object}  dto.MessageResponse
// @Router       /trades/{id} [get]
func (h *Handler) GetTrade(c *gin.Context) {
	tr, err := h.svc.Get(c.Request.Context(), parseTradeID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: dto.MsgTradeNotFound})
		return
	}
	c.JSON(http.StatusOK, tr)
}

// CreateTrade godoc
// @Summary      Create trade
// @Description  Stores a new trade and assigns it the next id. shares must be between 10 and 30.
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        trade  body      dto.CreateTradeRequest  true  "Trade without id"
// @Success      201    {object}  models.Trade
// @Failure      400    {object}  dto.MessageResponse
// @Router       /trades [post]
func (h *Handler) CreateTrade(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: dto.MsgInvalidTradeData})
		return
	}

	tr, err := h.svc.Create(c.Request.Context(), fields)
	switch {
	case errors.Is(err, service.ErrInvalidTrade):
		logger.L().Debug().Err(err).Msg("trade rejected")
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: dto.MsgInvalidTradeData})
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
	default:
		c.JSON(http.StatusCreated, tr)
	}
}

// UpdateTradePrice godoc
// @Summary      Update trade price
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        id     path      int                     true  "Trade id"
// @Param        price  body      dto.PriceUpdateRequest  true  "New price"
// @Success      200    {object}  models.Trade
// @Failure      400    {object}  dto.MessageResponse
// @Failure      404    {object}  dto.MessageResponse
// @Router       /trades/{id} [patch]
func (h *Handler) UpdateTradePrice(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: dto.MsgInvalidPriceData})
		return
	}

	tr, err := h.svc.UpdatePrice(c.Request.Context(), parseTradeID(c.Param("id")), body["price"])
	switch {
	case errors.Is(err, service.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: dto.MsgInvalidPriceData})
	case errors.Is(err, service.ErrTradeNotFound):
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: dto.MsgTradeNotFound})
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
	default:
		c.JSON(http.StatusOK, tr)
	}
}

// DeleteTrade godoc
// @Summary      Delete trade
// @Description  Removes the trade if present. Always answers 204.
// @Tags         trades
// @Param        id   path  int  true  "Trade id"
// @Success      204
// @Router       /trades/{id} [delete]
func (h *Handler) DeleteTrade(c *gin.Context) {
	h.svc.Delete(c.Request.Context(), parseTradeID(c.Param("id")))
	c.Status(http.StatusNoContent)
}

// parseTradeID reads the leading integer of raw: surrounding spaces and an
// optional sign are accepted and anything after the digits is ignored, so
// "12abc" is 12. Input without leading digits, or out of int64 range, yields 0,
// which never matches a stored trade.
func parseTradeID(raw string) int64 {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	digits := 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int64(s[digits] - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
