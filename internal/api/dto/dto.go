package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Owner        string          `json:"owner" binding:"required"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"required"`
	Frequency    string          `json:"frequency" binding:"required"`
	DurationDays int64           `json:"duration_days" binding:"required"`
	MinPrice     decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     decimal.Decimal `json:"max_price,omitempty"`
	FeePaid      decimal.Decimal `json:"fee_paid,omitempty"`
}

type CreateOrderResponse struct {
	Order Order `json:"order"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Owner   string `json:"owner" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type ExecuteOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type ExecuteOrderResponse struct {
	OrderID   string          `json:"order_id"`
	AmountIn  decimal.Decimal `json:"amount_in"`
	AmountOut decimal.Decimal `json:"amount_out"`
	Completed bool            `json:"completed"`
}

type InitializeRequest struct {
	Caller       string          `json:"caller" binding:"required"`
	Agent        string          `json:"agent" binding:"required"`
	Fee          decimal.Decimal `json:"fee"`
	FundingAsset string          `json:"funding_asset" binding:"required"`
	TargetAsset  string          `json:"target_asset" binding:"required"`
}

type SetAgentRequest struct {
	Caller string `json:"caller" binding:"required"`
	Agent  string `json:"agent" binding:"required"`
}

type SetFeeRequest struct {
	Caller string          `json:"caller" binding:"required"`
	Fee    decimal.Decimal `json:"fee"`
}

type SetPriceRequest struct {
	Caller string          `json:"caller" binding:"required"`
	Price  decimal.Decimal `json:"price" binding:"required"`
}

type DepositRequest struct {
	Account string          `json:"account" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

type Order struct {
	ID                string          `json:"id"`
	Owner             string          `json:"owner"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AmountPerSwap     decimal.Decimal `json:"amount_per_swap"`
	FrequencySeconds  int64           `json:"frequency_seconds"`
	LastExecutionTime time.Time       `json:"last_execution_time"`
	CreatedAt         time.Time       `json:"created_at"`
	EndTime           time.Time       `json:"end_time"`
	MinPrice          decimal.Decimal `json:"min_price"`
	MaxPrice          decimal.Decimal `json:"max_price"`
	SwapsExecuted     int64           `json:"swaps_executed"`
	TotalSwaps        int64           `json:"total_swaps"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type DueOrdersResponse struct {
	Due []string `json:"due"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type PriceResponse struct {
	Price decimal.Decimal `json:"price"`
	AsOf  time.Time       `json:"as_of"`
}
