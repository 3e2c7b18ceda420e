package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	propertyapp "staybook/internal/app/handlers/property"
	"staybook/internal/app/queries"
)

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type registerPropertyRequest struct {
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	ProposedRate int64  `json:"proposed_rate"`
	Currency     string `json:"currency"`
	MaxGuests    int    `json:"max_guests"`
	MinNights    int    `json:"min_nights"`
	RentalTerm   string `json:"rental_term"`
}

func (h PropertyHandler) Register(c *gin.Context) {
	var req registerPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertyapp.RegisterPropertyCommand{
		CommandID:    generateCommandID(),
		OwnerID:      req.OwnerID,
		Title:        req.Title,
		ProposedRate: req.ProposedRate,
		Currency:     req.Currency,
		MaxGuests:    req.MaxGuests,
		MinNights:    req.MinNights,
		RentalTerm:   req.RentalTerm,
	}
	result, err := commands.Dispatch[propertyapp.RegisterPropertyCommand, *propertyapp.RegisterPropertyResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type approvePropertyRequest struct {
	CommissionPercent int `json:"commission_percent"`
}

func (h PropertyHandler) Approve(c *gin.Context) {
	var req approvePropertyRequest
	_ = c.ShouldBindJSON(&req)
	cmd := propertyapp.ApprovePropertyCommand{
		PropertyID:        c.Param("id"),
		CommissionPercent: req.CommissionPercent,
	}
	result, err := commands.Dispatch[propertyapp.ApprovePropertyCommand, *propertyapp.ReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) ApproveContract(c *gin.Context) {
	cmd := propertyapp.ApproveContractCommand{
		PropertyID: c.Param("id"),
	}
	result, err := commands.Dispatch[propertyapp.ApproveContractCommand, *propertyapp.ReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type rejectPropertyRequest struct {
	Reason string `json:"reason"`
}

func (h PropertyHandler) Reject(c *gin.Context) {
	var req rejectPropertyRequest
	_ = c.ShouldBindJSON(&req)
	cmd := propertyapp.RejectPropertyCommand{
		PropertyID: c.Param("id"),
		Reason:     req.Reason,
	}
	result, err := commands.Dispatch[propertyapp.RejectPropertyCommand, *propertyapp.ReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteRateRequest struct {
	BaseRate          int64  `json:"base_rate"`
	Currency          string `json:"currency"`
	CommissionPercent int    `json:"commission_percent"`
}

func (h PropertyHandler) QuoteRate(c *gin.Context) {
	var req quoteRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := propertyapp.QuoteFinalRateQuery{
		BaseRate:          req.BaseRate,
		Currency:          req.Currency,
		CommissionPercent: req.CommissionPercent,
	}
	result, err := queries.Ask[propertyapp.QuoteFinalRateQuery, dto.RateCalculation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}
