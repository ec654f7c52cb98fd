package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/gin-gonic/gin"
)

// BillingQuerier defines the read-side operation used by BillingHTTPHandler.
type BillingQuerier interface {
	GetAccount(ctx context.Context, q cqrs.GetBillingAccountQuery) (*models.BillingAccount, error)
}

// BillingHTTPHandler serves the operator lookup of a patient's account.
type BillingHTTPHandler struct {
	queries BillingQuerier
}

func NewBillingHTTPHandler(queries BillingQuerier) *BillingHTTPHandler {
	return &BillingHTTPHandler{queries: queries}
}

func (h *BillingHTTPHandler) GetAccount(c *gin.Context) {
	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetBillingAccountQuery{PatientID: c.Param("patientId")})
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Billing account not found")
			return
		}
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch billing account")
		return
	}
	c.JSON(http.StatusOK, account)
}
