package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billetera/internal/rates"
)

// RateHandler exposes the current blue-dollar exchange rate.
type RateHandler struct {
	rateService rates.Servicer
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateService rates.Servicer) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// GetRate returns the current blue-dollar rate
// @Summary     Get exchange rate
// @Description Get the cached blue-dollar buy and sell rates, refreshing from the upstream API when stale
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} rates.Rate "Current rate"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Exchange rate unavailable"
// @Router      /rates/blue [get]
func (h *RateHandler) GetRate(c *gin.Context) {
	rate, err := h.rateService.GetRate(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}
