package handlers

import (
	"net/http"

	"recommender/internal/events"
	"recommender/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type EventHandler struct {
	catcher  *events.Catcher
	logger   *logger.Logger
	validate *validator.Validate
}

func NewEventHandler(catcher *events.Catcher, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		catcher:  catcher,
		logger:   logger,
		validate: validator.New(),
	}
}

type itemEventRequest struct {
	StaccID    string                 `json:"stacc_id"`
	ItemID     string                 `json:"item_id" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
}

type searchEventRequest struct {
	StaccID    string                 `json:"stacc_id"`
	Query      string                 `json:"query" validate:"required"`
	Filters    string                 `json:"filters"`
	Properties map[string]interface{} `json:"properties"`
}

type purchaseLine struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Quantity int     `json:"quantity" validate:"min=1"`
	Price    float64 `json:"price"`
}

type purchaseEventRequest struct {
	StaccID    string                 `json:"stacc_id"`
	ItemList   []purchaseLine         `json:"item_list" validate:"required,min=1,dive"`
	Currency   string                 `json:"currency" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
}

// Catch accepts one storefront event and queues it for delivery. Events
// without a session id are accepted and silently dropped; the storefront
// never sees a telemetry failure.
func (h *EventHandler) Catch(c *gin.Context) {
	switch c.Param("type") {
	case "add":
		h.itemEvent(c, h.catcher.AddToCart)
	case "view":
		h.itemEvent(c, h.catcher.View)
	case "search":
		h.searchEvent(c)
	case "purchase":
		h.purchaseEvent(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown event type"})
	}
}

func (h *EventHandler) itemEvent(c *gin.Context, emit func(staccID, itemID string, properties map[string]interface{})) {
	var req itemEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emit(req.StaccID, req.ItemID, req.Properties)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *EventHandler) searchEvent(c *gin.Context) {
	var req searchEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.catcher.Search(req.StaccID, req.Query, req.Filters, req.Properties)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *EventHandler) purchaseEvent(c *gin.Context) {
	var req purchaseEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]events.OrderLine, 0, len(req.ItemList))
	for _, line := range req.ItemList {
		lines = append(lines, events.OrderLine{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	h.catcher.Purchase(req.StaccID, lines, req.Currency, req.Properties)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
