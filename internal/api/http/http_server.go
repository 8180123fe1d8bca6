package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"dcaengine/internal/api/dto"
	"dcaengine/internal/core"
	"dcaengine/internal/domain"
	"dcaengine/internal/middleware"
	"dcaengine/internal/port"
)

type HTTPServer struct {
	Eng    *core.Engine
	Oracle port.Oracle
	// DepositFunc funds an account on the in-process custody ledger; nil
	// when custody is external.
	DepositFunc func(req dto.DepositRequest) error
	// PriceOverrideFunc pins the oracle reading; nil when overrides are
	// not allowed. The func is responsible for the admin check.
	PriceOverrideFunc func(caller string, price decimal.Decimal) error
}

func NewHTTPServer(eng *core.Engine, oracle port.Oracle) *HTTPServer {
	return &HTTPServer{Eng: eng, Oracle: oracle}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()

	rl := middleware.NewRateLimiter(time.Millisecond * 100)
	r.Use(rl.Middleware())

	r.POST("/orders", s.createOrder)
	r.POST("/orders/cancel", s.cancelOrder)
	r.POST("/orders/preauthorize", s.preAuthorize)
	r.POST("/orders/execute", s.executeOrder)
	r.GET("/orders/count", s.countOrders)
	r.GET("/orders/due", s.dueOrders)
	r.GET("/orders/:id", s.getOrder)
	r.HEAD("/orders/:id", s.orderExists)
	r.GET("/price", s.price)

	r.POST("/admin/init", s.initialize)
	r.POST("/admin/agent", s.setAgent)
	r.POST("/admin/fee", s.setFee)
	r.POST("/admin/price", s.setPrice)

	r.POST("/accounts/deposit", s.deposit)

	return r
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) createOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := s.Eng.CreateOrder(c.Request.Context(), core.CreateParams{
		Owner:        req.Owner,
		TotalAmount:  req.TotalAmount,
		Frequency:    domain.Frequency(req.Frequency),
		DurationDays: req.DurationDays,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		FeePaid:      req.FeePaid,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreateOrderResponse{Order: convertOrder(&o)})
}

func (s *HTTPServer) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.Cancel(c.Request.Context(), req.OrderID, req.Owner); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CancelOrderResponse{OrderID: req.OrderID, Cancelled: true})
}

// preAuthorize is the agent's pre-trade gate. The agent identity comes from
// the X-Agent-ID header; price and time are taken at call time.
func (s *HTTPServer) preAuthorize(c *gin.Context) {
	var req dto.ExecuteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := s.Oracle.LatestPrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	agent := c.GetHeader("X-Agent-ID")
	if err := s.Eng.PreAuthorize(c.Request.Context(), req.OrderID, time.Now(), quote.Value, agent); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": req.OrderID, "authorized": true})
}

func (s *HTTPServer) executeOrder(c *gin.Context) {
	var req dto.ExecuteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := s.Oracle.LatestPrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	agent := c.GetHeader("X-Agent-ID")
	res, err := s.Eng.Execute(c.Request.Context(), req.OrderID, time.Now(), quote.Value, agent)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExecuteOrderResponse{
		OrderID:   res.OrderID,
		AmountIn:  res.AmountIn,
		AmountOut: res.AmountOut,
		Completed: res.Completed,
	})
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, err := s.Eng.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: convertOrder(&o)})
}

func (s *HTTPServer) orderExists(c *gin.Context) {
	if s.Eng.Contains(c.Param("id")) {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusNotFound)
}

func (s *HTTPServer) countOrders(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CountResponse{Count: s.Eng.Count()})
}

func (s *HTTPServer) dueOrders(c *gin.Context) {
	c.JSON(http.StatusOK, dto.DueOrdersResponse{Due: s.Eng.DueOrders(time.Now())})
}

func (s *HTTPServer) price(c *gin.Context) {
	quote, err := s.Oracle.LatestPrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.PriceResponse{Price: quote.Value, AsOf: quote.AsOf})
}

func (s *HTTPServer) initialize(c *gin.Context) {
	var req dto.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := s.Eng.Initialize(req.Caller, req.Agent, req.Fee, core.PairConfig{
		FundingAsset: req.FundingAsset,
		TargetAsset:  req.TargetAsset,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"initialized": true})
}

func (s *HTTPServer) setAgent(c *gin.Context) {
	var req dto.SetAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.SetAgent(req.Caller, req.Agent); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent": req.Agent})
}

func (s *HTTPServer) setFee(c *gin.Context) {
	var req dto.SetFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.SetFee(req.Caller, req.Fee); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": req.Fee})
}

func (s *HTTPServer) setPrice(c *gin.Context) {
	if s.PriceOverrideFunc == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "price override disabled"})
		return
	}
	var req dto.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	if err := s.PriceOverrideFunc(req.Caller, req.Price); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": req.Price})
}

func (s *HTTPServer) deposit(c *gin.Context) {
	if s.DepositFunc == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "custody is external"})
		return
	}
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.DepositFunc(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": req.Account})
}

// abortWith maps engine errors onto HTTP statuses so callers can tell a
// retriable rejection (timing, price) from a terminal one.
func abortWith(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotOrderOwner), errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyInitialized):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrPeriodEnded),
		errors.Is(err, domain.ErrPriceBelowMinimum),
		errors.Is(err, domain.ErrPriceAboveMaximum),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientFee):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidSchedule), errors.Is(err, domain.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCustodyTransferFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "retriable": domain.Retriable(err)})
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		ID:                o.ID,
		Owner:             o.Owner,
		TotalAmount:       o.TotalAmount,
		AmountPerSwap:     o.AmountPerSwap,
		FrequencySeconds:  int64(o.Frequency.Seconds()),
		LastExecutionTime: o.LastExecutionTime,
		CreatedAt:         o.CreatedAt,
		EndTime:           o.EndTime,
		MinPrice:          o.MinPrice,
		MaxPrice:          o.MaxPrice,
		SwapsExecuted:     o.SwapsExecuted,
		TotalSwaps:        o.TotalSwaps,
		RemainingBalance:  o.RemainingBalance,
	}
}
