package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID      int64   `json:"flight_id"`
	PassengerID   int64   `json:"passenger_id"`
	SeatSelection string  `json:"seat_selection"`
	LuggageCount  int     `json:"luggage_count"`
	LuggageWeight float64 `json:"luggage_weight"`
}

type bookingResponse struct {
	ID            int64   `json:"id"`
	PNR           string  `json:"pnr"`
	FlightID      int64   `json:"flight_id"`
	PassengerID   int64   `json:"passenger_id"`
	SeatID        int     `json:"seat_id"`
	LuggageCount  int     `json:"luggage_count"`
	LuggageWeight float64 `json:"luggage_weight"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		PNR:           b.PNR,
		FlightID:      b.FlightID,
		PassengerID:   b.PassengerID,
		SeatID:        b.SeatID,
		LuggageCount:  b.LuggageCount,
		LuggageWeight: b.LuggageWeight,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/ping", h.ping)
	router.POST("/", h.create)
	router.GET("/pnr/:pnr", h.getByPNR)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
	router.PUT("/:id/cancel", h.cancel)
	router.GET("/:id/validate", h.validate)
	router.GET("/:id/pnr", h.pnr)
}

func (h *BookingHandler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// create answers 200 with the reservation. A repeated Idempotency-Key returns
// the reservation made by the first request, or 409 if the body differs.
func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:       req.FlightID,
		PassengerID:    req.PassengerID,
		SeatSelection:  req.SeatSelection,
		LuggageCount:   req.LuggageCount,
		LuggageWeight:  req.LuggageWeight,
		IdempotencyKey: c.GetHeader(idempotencyKeyHeader),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": id, "cancelled": cancelled})
}

func (h *BookingHandler) validate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	valid, err := h.service.ValidateBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": id, "valid": valid})
}

func (h *BookingHandler) pnr(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, err := h.service.RetrieveBookingPNR(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": id, "pnr": ref})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) getByPNR(c *gin.Context) {
	b, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}
