package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reservationHandler handles HTTP requests related to stock reservations.
type reservationHandler struct {
	reservationService portssvc.ReservationSvcFacade
}

func newReservationHandler(rs portssvc.ReservationSvcFacade) *reservationHandler {
	return &reservationHandler{reservationService: rs}
}

// RegisterReservationRoutes registers routes related to reservations.
func RegisterReservationRoutes(rg *gin.RouterGroup, reservationService portssvc.ReservationSvcFacade, writes ...gin.HandlerFunc) {
	h := newReservationHandler(reservationService)

	reservations := rg.Group("/reservations")
	{
		reservations.GET("", h.listReservations)
		reservations.GET("/:id", h.getReservation)
		reservations.POST("", chain(writes, h.createReservation)...)
		reservations.POST("/:id/convert", chain(writes, h.convertReservation)...)
		reservations.POST("/:id/cancel", chain(writes, h.cancelReservation)...)
		reservations.POST("/:id/return", chain(writes, h.returnReservation)...)
	}
}

// createReservation godoc
// @Summary Reserve stock for a customer
// @Description Takes the quantity off the shelf and records an active reservation at the current unit price
// @Tags reservations
// @Accept  json
// @Produce  json
// @Param   reservation body dto.CreateReservationRequest true "Reservation details"
// @Success 201 {object} dto.ReservationResponse
// @Failure 400 {object} map[string]string "Invalid input or quantity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to create reservation"
// @Security BearerAuth
// @Router /reservations [post]
func (h *reservationHandler) createReservation(c *gin.Context) {
	var req dto.CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create reservation")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Reservation created", slog.String("reservation_id", reservation.ReservationID))
	c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

// getReservation godoc
// @Summary Get a reservation by ID
// @Tags reservations
// @Produce  json
// @Param   id path string true "Reservation ID"
// @Success 200 {object} dto.ReservationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Reservation not found"
// @Failure 500 {object} map[string]string "Failed to retrieve reservation"
// @Security BearerAuth
// @Router /reservations/{id} [get]
func (h *reservationHandler) getReservation(c *gin.Context) {
	reservation, err := h.reservationService.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve reservation")
		return
	}
	c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

// listReservations godoc
// @Summary List reservations
// @Description Lists reservations, newest first, optionally filtered
// @Tags reservations
// @Produce  json
// @Param   status query string false "Status filter" Enums(active, sold, cancelled, returned)
// @Param   productID query string false "Product filter"
// @Param   customerID query string false "Customer filter"
// @Param   creditAccountID query string false "Credit account filter"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListReservationsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list reservations"
// @Security BearerAuth
// @Router /reservations [get]
func (h *reservationHandler) listReservations(c *gin.Context) {
	var params dto.ListReservationsParams
	if !bindQuery(c, &params) {
		return
	}

	reservations, err := h.reservationService.ListReservations(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReservationsResponse(reservations))
}

// convertReservation godoc
// @Summary Convert a reservation into credit
// @Description Adds the reservation as a line item to the customer's open credit account, opening one if needed. The reservation stays active until the account is paid off.
// @Tags reservations
// @Accept  json
// @Produce  json
// @Param   id path string true "Reservation ID"
// @Param   terms body dto.ConvertReservationRequest true "Customer and installment terms"
// @Success 200 {object} dto.CreditAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Reservation not found"
// @Failure 409 {object} map[string]string "Reservation not active or already converted"
// @Failure 500 {object} map[string]string "Failed to convert reservation"
// @Security BearerAuth
// @Router /reservations/{id}/convert [post]
func (h *reservationHandler) convertReservation(c *gin.Context) {
	var req dto.ConvertReservationRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	account, err := h.reservationService.ConvertToCreditAccount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to convert reservation")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditAccountResponse(account))
}

// cancelReservation godoc
// @Summary Cancel a reservation
// @Description Returns the reserved quantity to stock and marks the reservation cancelled
// @Tags reservations
// @Produce  json
// @Param   id path string true "Reservation ID"
// @Success 200 {object} dto.ReservationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Reservation not found"
// @Failure 409 {object} map[string]string "Reservation not active or already converted to credit"
// @Failure 500 {object} map[string]string "Failed to cancel reservation"
// @Security BearerAuth
// @Router /reservations/{id}/cancel [post]
func (h *reservationHandler) cancelReservation(c *gin.Context) {
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	reservation, err := h.reservationService.CancelReservation(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to cancel reservation")
		return
	}
	c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

// returnReservation godoc
// @Summary Record a returned reservation
// @Description Returns the reserved quantity to stock and marks the reservation returned
// @Tags reservations
// @Produce  json
// @Param   id path string true "Reservation ID"
// @Success 200 {object} dto.ReservationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Reservation not found"
// @Failure 409 {object} map[string]string "Reservation not active or already converted to credit"
// @Failure 500 {object} map[string]string "Failed to return reservation"
// @Security BearerAuth
// @Router /reservations/{id}/return [post]
func (h *reservationHandler) returnReservation(c *gin.Context) {
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	reservation, err := h.reservationService.ReturnReservation(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to return reservation")
		return
	}
	c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}
