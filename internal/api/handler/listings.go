package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"travelbay/backend/internal/models"
	"travelbay/backend/internal/storage"
)

// callerAgency resolves the agency the caller owns, rejecting customers.
func (h *Handler) callerAgency(c *gin.Context) (*models.Agency, bool) {
	id := callerIdentity(c)
	if id.Role != models.RoleAgencyOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "Agency owner role required"})
		return nil, false
	}
	agency, err := h.Storage.GetAgencyByOwner(id.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No agency linked to this account"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve agency"})
		return nil, false
	}
	return agency, true
}

func respondListing(c *gin.Context, v any, err error) {
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listing"})
		return
	}
	c.JSON(http.StatusOK, v)
}

type createTripRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Destination string    `json:"destination" binding:"required"`
	Tags        []string  `json:"tags"`
	Price       int64     `json:"price" binding:"required"`
	Seats       int       `json:"seats" binding:"required"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

func (h *Handler) CreateTrip(c *gin.Context) {
	agency, ok := h.callerAgency(c)
	if !ok {
		return
	}
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip := &models.Trip{
		AgencyID:    agency.ID,
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		Tags:        pq.StringArray(req.Tags),
		Price:       req.Price,
		Seats:       req.Seats,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := h.Storage.CreateTrip(trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handler) ListTrips(c *gin.Context) {
	trips, err := h.Storage.ListTrips()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.Storage.GetTrip(c.Param("id"))
	respondListing(c, trip, err)
}

type createCarRequest struct {
	Model       string   `json:"model" binding:"required"`
	City        string   `json:"city" binding:"required"`
	Tags        []string `json:"tags"`
	PricePerDay int64    `json:"pricePerDay" binding:"required"`
}

func (h *Handler) CreateCar(c *gin.Context) {
	agency, ok := h.callerAgency(c)
	if !ok {
		return
	}
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car := &models.Car{
		AgencyID:    agency.ID,
		Model:       req.Model,
		City:        req.City,
		Tags:        pq.StringArray(req.Tags),
		PricePerDay: req.PricePerDay,
	}
	if err := h.Storage.CreateCar(car); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create car"})
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (h *Handler) ListCars(c *gin.Context) {
	cars, err := h.Storage.ListCars()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cars"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

func (h *Handler) GetCar(c *gin.Context) {
	car, err := h.Storage.GetCar(c.Param("id"))
	respondListing(c, car, err)
}

type createHotelRequest struct {
	Name      string   `json:"name" binding:"required"`
	City      string   `json:"city" binding:"required"`
	Amenities []string `json:"amenities"`
}

func (h *Handler) CreateHotel(c *gin.Context) {
	agency, ok := h.callerAgency(c)
	if !ok {
		return
	}
	var req createHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hotel := &models.Hotel{
		AgencyID:  agency.ID,
		Name:      req.Name,
		City:      req.City,
		Amenities: pq.StringArray(req.Amenities),
	}
	if err := h.Storage.CreateHotel(hotel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hotel"})
		return
	}
	c.JSON(http.StatusCreated, hotel)
}

func (h *Handler) ListHotels(c *gin.Context) {
	hotels, err := h.Storage.ListHotels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load hotels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": hotels})
}

func (h *Handler) GetHotel(c *gin.Context) {
	hotel, err := h.Storage.GetHotel(c.Param("id"))
	respondListing(c, hotel, err)
}

type createRoomRequest struct {
	Name          string `json:"name" binding:"required"`
	Capacity      int    `json:"capacity" binding:"required"`
	PricePerNight int64  `json:"pricePerNight" binding:"required"`
}

// CreateRoom adds a room under one of the caller's hotels.
func (h *Handler) CreateRoom(c *gin.Context) {
	agency, ok := h.callerAgency(c)
	if !ok {
		return
	}

	hotel, err := h.Storage.GetHotel(c.Param("id"))
	if err != nil {
		respondListing(c, nil, err)
		return
	}
	if hotel.AgencyID != agency.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Hotel belongs to another agency"})
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := &models.HotelRoom{
		HotelID:       hotel.ID,
		AgencyID:      agency.ID,
		Name:          req.Name,
		Capacity:      req.Capacity,
		PricePerNight: req.PricePerNight,
	}
	if err := h.Storage.CreateRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Storage.ListRooms(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}
