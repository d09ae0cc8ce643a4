package dto

import "github.com/guttosm/tradesapi/internal/domain/models"

// TradesResponse is the body of GET /trades.
type TradesResponse struct {
	Trades []models.Trade `json:"trades"`
}

// PriceUpdateRequest documents the body of PATCH /trades/{id}.
type PriceUpdateRequest struct {
	Price float64 `json:"price" example:"11.25"`
}

// CreateTradeRequest documents the body of POST /trades.
type CreateTradeRequest struct {
	Type   string  `json:"type" example:"buy"`
	UserID int64   `json:"user_id" example:"1"`
	Symbol string  `json:"symbol" example:"ACME"`
	Shares int     `json:"shares" example:"15"`
	Price  float64 `json:"price" example:"10.5"`
}
