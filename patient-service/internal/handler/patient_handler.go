package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/patient"
	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/gin-gonic/gin"
)

// PatientCommander defines the write-side operations used by PatientHandler.
type PatientCommander interface {
	Create(ctx context.Context, cmd cqrs.CreatePatientCommand) (*models.Patient, error)
	Update(ctx context.Context, cmd cqrs.UpdatePatientCommand) (*models.Patient, error)
}

// PatientQuerier defines the read-side operations used by PatientHandler.
type PatientQuerier interface {
	GetPatient(ctx context.Context, q cqrs.GetPatientQuery) (*models.PatientView, error)
	ListPatients(ctx context.Context, q cqrs.ListPatientsQuery) ([]*models.PatientView, error)
}

// PatientHandler routes requests to the orchestrator or query service as appropriate.
type PatientHandler struct {
	commands PatientCommander
	queries  PatientQuerier
}

type CreatePatientRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`
	RegisteredDate string `json:"registeredDate" validate:"required"`
}

// UpdatePatientRequest accepts the create shape; registeredDate is ignored.
type UpdatePatientRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`
	RegisteredDate string `json:"registeredDate"`
}

// ProvisioningFailedResponse tells the caller the record exists even though
// billing did not complete.
type ProvisioningFailedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func NewPatientHandler(commands PatientCommander, queries PatientQuerier) *PatientHandler {
	return &PatientHandler{commands: commands, queries: queries}
}

func (h *PatientHandler) ListPatients(c *gin.Context) {
	views, err := h.queries.ListPatients(c.Request.Context(), cqrs.ListPatientsQuery{})
	if err != nil {
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Failed to list patients")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *PatientHandler) GetPatient(c *gin.Context) {
	view, err := h.queries.GetPatient(c.Request.Context(), cqrs.GetPatientQuery{PatientID: c.Param("id")})
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	p, err := h.commands.Create(c.Request.Context(), cqrs.CreatePatientCommand{
		Name:           req.Name,
		Email:          req.Email,
		Address:        req.Address,
		DateOfBirth:    req.DateOfBirth,
		RegisteredDate: req.RegisteredDate,
	})
	if err != nil {
		if errors.Is(err, patient.ErrProvisioningFailed) && p != nil {
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, ProvisioningFailedResponse{
				Message: "Patient saved but billing account provisioning failed",
				ID:      p.ID,
			})
			return
		}
		h.respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.ToView())
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	p, err := h.commands.Update(c.Request.Context(), cqrs.UpdatePatientCommand{
		PatientID:   c.Param("id"),
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.ToView())
}

func (h *PatientHandler) respondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, patient.ErrInvalidDate):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, patient.ErrDuplicateEmail):
		middleware.RespondWithError(c, http.StatusConflict, "A patient with this email already exists")
	case errors.Is(err, patient.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, patient.ErrProvisioningFailed):
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusBadGateway, "Billing account provisioning failed")
	case errors.Is(err, patient.ErrStoreUnavailable):
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Patient store unavailable")
	default:
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
