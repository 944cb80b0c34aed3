package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightRequest struct {
	ID                 int64      `json:"id,omitempty"`
	AirlineID          int64      `json:"airline_id"`
	DepartureAirportID int64      `json:"departure_airport_id"`
	ArrivalAirportID   int64      `json:"arrival_airport_id"`
	DepartureTime      time.Time  `json:"departure_time"`
	ArrivalTime        *time.Time `json:"arrival_time,omitempty"`
	FirstPrice         float64    `json:"first_price"`
	BusinessPrice      float64    `json:"business_price"`
	EconomyPrice       float64    `json:"economy_price"`
	LuggagePrice       float64    `json:"luggage_price"`
	WeightPrice        float64    `json:"weight_price"`
	Status             string     `json:"status,omitempty"`
}

func (r flightRequest) toDomain() *domain.Flight {
	f := &domain.Flight{
		AirlineID:          r.AirlineID,
		DepartureAirportID: r.DepartureAirportID,
		ArrivalAirportID:   r.ArrivalAirportID,
		DepartureTime:      r.DepartureTime,
		FirstPrice:         r.FirstPrice,
		BusinessPrice:      r.BusinessPrice,
		EconomyPrice:       r.EconomyPrice,
		LuggagePrice:       r.LuggagePrice,
		WeightPrice:        r.WeightPrice,
		Status:             domain.FlightStatus(r.Status),
	}
	if r.ArrivalTime != nil {
		f.ArrivalTime = *r.ArrivalTime
	}
	return f
}

type flightResponse struct {
	ID                 int64      `json:"id"`
	AirlineID          int64      `json:"airline_id"`
	DepartureAirportID int64      `json:"departure_airport_id"`
	ArrivalAirportID   int64      `json:"arrival_airport_id"`
	DepartureTime      time.Time  `json:"departure_time"`
	ArrivalTime        *time.Time `json:"arrival_time,omitempty"`
	FirstPrice         float64    `json:"first_price"`
	BusinessPrice      float64    `json:"business_price"`
	EconomyPrice       float64    `json:"economy_price"`
	LuggagePrice       float64    `json:"luggage_price"`
	WeightPrice        float64    `json:"weight_price"`
	Status             string     `json:"status"`
	StatusColor        string     `json:"status_color"`
	DurationMinutes    *int64     `json:"duration_minutes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	resp := flightResponse{
		ID:                 f.ID,
		AirlineID:          f.AirlineID,
		DepartureAirportID: f.DepartureAirportID,
		ArrivalAirportID:   f.ArrivalAirportID,
		DepartureTime:      f.DepartureTime,
		FirstPrice:         f.FirstPrice,
		BusinessPrice:      f.BusinessPrice,
		EconomyPrice:       f.EconomyPrice,
		LuggagePrice:       f.LuggagePrice,
		WeightPrice:        f.WeightPrice,
		Status:             string(f.Status),
		StatusColor:        f.StatusColor(),
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
	if !f.ArrivalTime.IsZero() {
		arrival := f.ArrivalTime
		resp.ArrivalTime = &arrival
	}
	if d, ok := f.DurationMinutes(); ok {
		resp.DurationMinutes = &d
	}
	return resp
}

func toFlightResponses(flights []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, toFlightResponse(&flights[i]))
	}
	return out
}

// flightStatusResponse is also what the booking service's catalog client reads.
type flightStatusResponse struct {
	FlightID int64  `json:"flightId"`
	Status   string `json:"status"`
	Color    string `json:"color"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/check-duplicate", h.checkDuplicate)
	router.GET("/airline/:airlineId", h.listByAirline)
	router.GET("/status/:status", h.listByStatus)
	router.GET("/search/date", h.searchByDate)
	router.GET("/search/route", h.searchByRoute)
	router.GET("/search/route-date", h.searchByRouteAndDate)
	router.GET("/filter/max-price", h.filterByMaxPrice)
	router.GET("/filter/price-range", h.filterByPriceRange)
	router.GET("/filter/max-duration", h.filterByMaxDuration)
	router.GET("/filter/duration-range", h.filterByDurationRange)
	router.POST("/sort/:key", h.sort)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/status", h.status)
	router.PUT("/:id/status", h.updateStatus)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	flight, err := h.service.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	flight, err := h.service.Update(c.Request.Context(), id, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) status(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightStatusResponse{FlightID: flight.ID, Status: string(flight.Status), Color: flight.StatusColor()})
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		writeError(c, http.StatusBadRequest, codeInvalidStatus, "status query parameter is required")
		return
	}
	flight, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightStatusResponse{FlightID: flight.ID, Status: string(flight.Status), Color: flight.StatusColor()})
}

func (h *FlightHandler) listByAirline(c *gin.Context) {
	airlineID, ok := pathID(c, "airlineId")
	if !ok {
		return
	}
	flights, err := h.service.ListByAirline(c.Request.Context(), airlineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

func (h *FlightHandler) listByStatus(c *gin.Context) {
	flights, err := h.service.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

// checkDuplicate answers whether a flight in the given slot already exists.
// excludeId lets an edit form check without matching the flight being edited.
func (h *FlightHandler) checkDuplicate(c *gin.Context) {
	var (
		candidate domain.Flight
		err       error
	)
	if candidate.DepartureAirportID, err = queryInt(c, "depAirportId"); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	if candidate.ArrivalAirportID, err = queryInt(c, "arrAirportId"); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	if candidate.AirlineID, err = queryInt(c, "airlineId"); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	if candidate.DepartureTime, err = queryDate(c, "date"); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	var excludeID int64
	if c.Query("excludeId") != "" {
		if excludeID, err = queryInt(c, "excludeId"); err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
			return
		}
	}

	duplicate, err := h.service.IsDuplicate(c.Request.Context(), &candidate, excludeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicate": duplicate})
}

func (h *FlightHandler) searchByDate(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.SearchByDate(c.Request.Context(), date))
}

func (h *FlightHandler) searchByRoute(c *gin.Context) {
	dep, arr, ok := routeParams(c)
	if !ok {
		return
	}
	h.respondFlights(c)(h.service.SearchByRoute(c.Request.Context(), dep, arr))
}

func (h *FlightHandler) searchByRouteAndDate(c *gin.Context) {
	dep, arr, ok := routeParams(c)
	if !ok {
		return
	}
	date, err := queryDate(c, "date")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.SearchByRouteAndDate(c.Request.Context(), dep, arr, date))
}

func (h *FlightHandler) filterByMaxPrice(c *gin.Context) {
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.FilterByMaxPrice(c.Request.Context(), maxPrice))
}

func (h *FlightHandler) filterByPriceRange(c *gin.Context) {
	minPrice, err := queryFloat(c, "minPrice")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.FilterByPriceRange(c.Request.Context(), minPrice, maxPrice))
}

func (h *FlightHandler) filterByMaxDuration(c *gin.Context) {
	maxMinutes, err := queryInt(c, "maxMinutes")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.FilterByMaxDuration(c.Request.Context(), maxMinutes))
}

func (h *FlightHandler) filterByDurationRange(c *gin.Context) {
	minMinutes, err := queryInt(c, "minMinutes")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	maxMinutes, err := queryInt(c, "maxMinutes")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	h.respondFlights(c)(h.service.FilterByDurationRange(c.Request.Context(), minMinutes, maxMinutes))
}

// sort orders the flights posted in the body; nothing is read from storage.
func (h *FlightHandler) sort(c *gin.Context) {
	key, err := flights.ParseSortKey(c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req []flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}
	in := make([]domain.Flight, 0, len(req))
	for _, r := range req {
		f := r.toDomain()
		f.ID = r.ID
		in = append(in, *f)
	}
	c.JSON(http.StatusOK, toFlightResponses(flights.Sort(in, key, c.Query("order") == "desc")))
}

func (h *FlightHandler) respondFlights(c *gin.Context) func([]domain.Flight, error) {
	return func(flights []domain.Flight, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toFlightResponses(flights))
	}
}

func routeParams(c *gin.Context) (int64, int64, bool) {
	dep, err := queryInt(c, "depAirportId")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return 0, 0, false
	}
	arr, err := queryInt(c, "arrAirportId")
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return 0, 0, false
	}
	return dep, arr, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidID, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func queryFloat(c *gin.Context, name string) (float64, error) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// queryDate accepts YYYY-MM-DD and reads it as a UTC calendar date.
func queryDate(c *gin.Context, name string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, c.Query(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s, expected YYYY-MM-DD", name)
	}
	return d, nil
}
