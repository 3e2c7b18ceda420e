package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	voucherapp "staybook/internal/app/handlers/voucher"
	"staybook/internal/app/queries"
)

type VoucherHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createVoucherRequest struct {
	Code         string    `json:"code"`
	OwnerID      string    `json:"owner_id"`
	PropertyID   string    `json:"property_id"`
	DiscountType string    `json:"discount_type"`
	Percent      int       `json:"percent"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Expiration   time.Time `json:"expiration"`
	UsageLimit   int       `json:"usage_limit"`
}

func (h VoucherHandler) Create(c *gin.Context) {
	var req createVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := voucherapp.CreateVoucherCommand{
		CommandID:    generateCommandID(),
		Code:         req.Code,
		OwnerID:      req.OwnerID,
		PropertyID:   req.PropertyID,
		DiscountType: req.DiscountType,
		Percent:      req.Percent,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Expiration:   req.Expiration,
		UsageLimit:   req.UsageLimit,
	}
	result, err := commands.Dispatch[voucherapp.CreateVoucherCommand, *voucherapp.CreateVoucherResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type validateVoucherRequest struct {
	Code       string `json:"code"`
	PropertyID string `json:"property_id"`
	Subtotal   int64  `json:"subtotal"`
	Currency   string `json:"currency"`
}

func (h VoucherHandler) Validate(c *gin.Context) {
	var req validateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := voucherapp.ValidateVoucherQuery{
		Code:       req.Code,
		PropertyID: req.PropertyID,
		Subtotal:   req.Subtotal,
		Currency:   req.Currency,
	}
	result, err := queries.Ask[voucherapp.ValidateVoucherQuery, dto.VoucherValidation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ VoucherHTTP = VoucherHandler{}
