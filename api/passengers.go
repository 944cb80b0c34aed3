package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/service/passengers"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
}

type passengerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
}

type passengerResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Nationality string    `json:"nationality"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPassengerResponse(p *domain.Passenger) passengerResponse {
	return passengerResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Nationality: p.Nationality,
		CreatedAt:   p.CreatedAt,
	}
}

func NewPassengerHandler(service passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{service: service}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.register)
	router.GET("/:id", h.get)
	router.GET("/:id/exists", h.exists)
}

func (h *PassengerHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]passengerResponse, 0, len(list))
	for i := range list {
		out = append(out, toPassengerResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PassengerHandler) register(c *gin.Context) {
	var req passengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	p, err := h.service.Register(c.Request.Context(), &domain.Passenger{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Nationality: req.Nationality,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPassengerResponse(p))
}

func (h *PassengerHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPassengerResponse(p))
}

// exists is the check the booking service makes before reserving a seat.
// A missing passenger is a 200 with exists=false, not a 404.
func (h *PassengerHandler) exists(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.service.Exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passengerId": id, "exists": found})
}
