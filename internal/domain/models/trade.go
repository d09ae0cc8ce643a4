package models

import "encoding/json"

// Trade is a single buy/sell record of the collection.
//
// ID is assigned by the store and never taken from a client on create.
// Shares is checked on create and therefore always a whole number. The other
// client fields are kept as raw JSON so whatever value a client sent (string,
// number, null or anything else) round-trips unchanged through storage.
//
// swagger:model Trade
type Trade struct {
	ID     int64           `json:"id" example:"1"`
	Type   json.RawMessage `json:"type" swaggertype:"string" example:"buy"`
	UserID json.RawMessage `json:"user_id" swaggertype:"primitive,integer" example:"1"`
	Symbol json.RawMessage `json:"symbol" swaggertype:"string" example:"ACME"`
	Shares int             `json:"shares" example:"15"`
	Price  json.RawMessage `json:"price" swaggertype:"number" example:"10.5"`
}

// TradeInput is the client-supplied part of a Trade, before an id is assigned.
type TradeInput struct {
	Type   json.RawMessage
	UserID json.RawMessage
	Symbol json.RawMessage
	Shares int
	Price  json.RawMessage
}

// WithID materializes the input as a stored trade.
func (in TradeInput) WithID(id int64) Trade {
	return Trade{
		ID:     id,
		Type:   in.Type,
		UserID: in.UserID,
		Symbol: in.Symbol,
		Shares: in.Shares,
		Price:  in.Price,
	}
}
