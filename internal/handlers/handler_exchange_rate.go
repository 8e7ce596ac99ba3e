package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finbackoffice/fxrates_app/internal/apperrors"
	portssvc "github.com/finbackoffice/fxrates_app/internal/core/ports/services"
	"github.com/finbackoffice/fxrates_app/internal/dto"
	"github.com/finbackoffice/fxrates_app/internal/middleware"
	"github.com/finbackoffice/fxrates_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
	currencyService     portssvc.CurrencyReaderSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade, cs portssvc.CurrencyReaderSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		currencyService:     cs,
	}
}

// RegisterExchangeRateRoutes registers routes related to exchange rates.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade, currencyService portssvc.CurrencyReaderSvc) {
	h := newExchangeRateHandler(exchangeRateService, currencyService)

	rates := rg.Group("/rates")
	{
		rates.GET("", h.listRates)
		rates.POST("/reconcile", h.runReconciliation)
		rates.GET("/:base/:target", h.getRate)
		rates.PUT("/:base/:target", h.setManualRate)
		rates.GET("/:base/:target/history", h.listHistory)
	}
	rg.GET("/convert", h.convert)
}

// listRates godoc
// @Summary List all stored exchange rates
// @Description Returns every stored rate row including manual-override metadata
// @Tags exchange rates
// @Produce  json
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 500 {object} map[string]string "Failed to list exchange rates"
// @Router /rates [get]
func (h *exchangeRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.exchangeRateService.ListRates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exchange rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// getRate godoc
// @Summary Get a stored exchange rate
// @Description Retrieves the stored rate row for a currency pair. Strict lookup: 404 when the pair is absent.
// @Tags exchange rates
// @Produce  json
// @Param   base   path string true "Base Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   target path string true "Target Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid currency code format"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Router /rates/{base}/{target} [get]
func (h *exchangeRateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	baseCode := c.Param("base")
	targetCode := c.Param("target")

	logger = logger.With(slog.String("base_code", baseCode), slog.String("target_code", targetCode))

	rate, err := h.exchangeRateService.GetRate(c.Request.Context(), baseCode, targetCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Exchange rate not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		} else {
			logger.Error("Failed to get exchange rate from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve exchange rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// setManualRate godoc
// @Summary Manually set an exchange rate
// @Description Unconditionally overwrites the pair's rate and marks it as a manual override. Automatic updates will not overwrite it within the override window.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   base   path string true "Base Currency Code (3 letters)"
// @Param   target path string true "Target Currency Code (3 letters)"
// @Param   rate body dto.SetManualRateRequest true "New rate and author"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to update exchange rate"
// @Router /rates/{base}/{target} [put]
func (h *exchangeRateHandler) setManualRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	baseCode := c.Param("base")
	targetCode := c.Param("target")

	var req dto.SetManualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetManualRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("base_code", baseCode),
		slog.String("target_code", targetCode),
		slog.String("updated_by", req.UpdatedBy),
	)
	logger.Info("Received manual rate update", slog.Any("rate", req.Rate))

	rate, err := h.exchangeRateService.SetManualRate(c.Request.Context(), baseCode, targetCode, req.Rate, req.UpdatedBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error setting manual rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to set manual rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update exchange rate"})
		}
		return
	}

	logger.Info("Manual rate update applied")
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// runReconciliation godoc
// @Summary Run a reconciliation pass
// @Description Merges externally-sourced candidate rates into the store. Candidates are skipped when a manual rate was set within the override window.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   request body dto.RunReconciliationRequest true "Candidates and source label"
// @Success 200 {object} dto.ReconciliationReportResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Reconciliation failed"
// @Router /rates/reconcile [post]
func (h *exchangeRateHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunReconciliation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("source_label", req.SourceLabel))
	logger.Info("Received reconciliation request", slog.Int("candidates", len(req.Candidates)))

	report, err := h.exchangeRateService.RunReconciliation(c.Request.Context(), req.ToRateCandidates(), req.SourceLabel)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Reconciliation pass failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		}
		return
	}

	logger.Info("Reconciliation pass completed",
		slog.Int("updated", report.Updated()),
		slog.Int("inserted", report.Inserted()),
		slog.Int("skipped", report.Skipped()),
		slog.Int("failed", report.Failed()),
	)
	c.JSON(http.StatusOK, dto.ToReconciliationReportResponse(report))
}

// listHistory godoc
// @Summary List change history for a currency pair
// @Description Returns recent history entries, newest first
// @Tags exchange rates
// @Produce  json
// @Param   base   path string true "Base Currency Code (3 letters)"
// @Param   target path string true "Target Currency Code (3 letters)"
// @Param   limit  query int false "Max entries to return (default 50)"
// @Success 200 {array} dto.ExchangeRateHistoryResponse
// @Failure 400 {object} map[string]string "Invalid currency code format"
// @Failure 500 {object} map[string]string "Failed to list history"
// @Router /rates/{base}/{target}/history [get]
func (h *exchangeRateHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	baseCode := c.Param("base")
	targetCode := c.Param("target")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.exchangeRateService.ListHistory(c.Request.Context(), baseCode, targetCode, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list exchange rate history", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list history"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateHistoryResponse(entries))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Applies the current rate set: identity, direct, inverse, or a fallback of 1 when no rate path exists. No rounding is applied.
// @Tags exchange rates
// @Produce  json
// @Param   amount query string true "Amount to convert"
// @Param   from   query string true "From Currency Code (3 letters)"
// @Param   to     query string true "To Currency Code (3 letters)"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Conversion failed"
// @Router /convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Query("from")
	toCode := c.Query("to")

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + err.Error()})
		return
	}

	rate, err := h.exchangeRateService.Rate(c.Request.Context(), fromCode, toCode)
	if err != nil {
		h.respondConvertError(c, logger, err)
		return
	}
	converted := amount.Mul(rate)

	// Display rounding uses the target currency's precision when known; the
	// converted value itself stays exact.
	display := utils.FormatWithPrecision(converted, 2)
	if target, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), toCode); err == nil {
		display = utils.FormatWithCurrencyPrecision(converted, *target)
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:           amount,
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             rate,
		Converted:        converted,
		ConvertedDisplay: display,
	})
}

func (h *exchangeRateHandler) respondConvertError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDataIntegrity):
		logger.Error("Stored rate violates positivity invariant", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored rate data is invalid"})
	default:
		logger.Error("Conversion failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Conversion failed"})
	}
}
