package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"travelbay/backend/internal/models"
	"travelbay/backend/internal/storage"
)

// PaymentVerifier is the external payment gateway contract: given the
// gateway's reference, report what the booking status should become.
type PaymentVerifier interface {
	Verify(reference string) (models.BookingStatus, error)
}

type createBookingRequest struct {
	PostID   string          `json:"postId" binding:"required"`
	PostType models.PostType `json:"postType" binding:"required"`
}

// CreateBooking books a trip, car, or hotel room for the caller. The amount
// is taken from the listing, never from the client.
func (h *Handler) CreateBooking(c *gin.Context) {
	id := callerIdentity(c)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.listingAmount(req.PostID, req.PostType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking := &models.Booking{
		UserID:   id.UserID,
		PostID:   req.PostID,
		PostType: req.PostType,
		Status:   models.BookingPending,
		Amount:   amount,
	}
	if err := h.Storage.CreateBooking(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) listingAmount(postID string, postType models.PostType) (int64, error) {
	switch postType {
	case models.PostTrip:
		trip, err := h.Storage.GetTrip(postID)
		if err != nil {
			return 0, err
		}
		return trip.Price, nil
	case models.PostCar:
		car, err := h.Storage.GetCar(postID)
		if err != nil {
			return 0, err
		}
		return car.PricePerDay, nil
	case models.PostRoom:
		room, err := h.Storage.GetRoom(postID)
		if err != nil {
			return 0, err
		}
		return room.PricePerNight, nil
	default:
		return 0, errors.New("bookable postType must be trip, car, or room")
	}
}

// ListMyBookings returns the caller's bookings, newest first.
func (h *Handler) ListMyBookings(c *gin.Context) {
	id := callerIdentity(c)

	bookings, err := h.Storage.ListBookingsForUser(id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// BookingTicket renders the booking reference as a QR PNG, only for paid
// bookings owned by the caller.
func (h *Handler) BookingTicket(c *gin.Context) {
	id := callerIdentity(c)

	booking, err := h.Storage.GetBookingByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}
	if booking.UserID != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		return
	}
	if booking.Status != models.BookingPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not paid"})
		return
	}

	payload := fmt.Sprintf("travelbay:booking:%s", booking.ID)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render ticket"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type paymentCallbackRequest struct {
	BookingID string               `json:"bookingId" binding:"required"`
	Reference string               `json:"reference" binding:"required"`
	Status    models.BookingStatus `json:"status" binding:"required"`
}

// PaymentCallback applies the gateway's verify/update contract: the
// reported status is re-verified against the gateway when a verifier is
// configured, then the booking is updated.
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if h.Payments != nil {
		verified, err := h.Payments.Verify(req.Reference)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment verification failed"})
			return
		}
		status = verified
	}
	if status != models.BookingPaid && status != models.BookingCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be paid or cancelled"})
		return
	}

	if err := h.Storage.UpdateBookingStatus(req.BookingID, status, req.Reference); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": req.BookingID, "status": status})
}
