package storage

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"travelbay/backend/internal/models"
)

// CreateUser saves a new user account.
func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAgency saves a new agency tenant.
func (s *Service) CreateAgency(agency *models.Agency) error {
	return s.DB.Create(agency).Error
}

func (s *Service) GetAgencyByOwner(ownerID string) (*models.Agency, error) {
	var agency models.Agency
	err := s.DB.Where("owner_id = ?", ownerID).First(&agency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

// LinkUserAgency records which agency an agency-owner account manages.
func (s *Service) LinkUserAgency(userID, agencyID string) error {
	result := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("agency_id", agencyID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Listings ---

func (s *Service) CreateTrip(trip *models.Trip) error {
	return s.DB.Create(trip).Error
}

func (s *Service) ListTrips() ([]models.Trip, error) {
	var trips []models.Trip
	err := s.DB.Order("created_at desc").Find(&trips).Error
	return trips, err
}

func (s *Service) GetTrip(id string) (*models.Trip, error) {
	var trip models.Trip
	err := s.DB.Where("id = ?", id).First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *Service) CreateCar(car *models.Car) error {
	return s.DB.Create(car).Error
}

func (s *Service) ListCars() ([]models.Car, error) {
	var cars []models.Car
	err := s.DB.Order("created_at desc").Find(&cars).Error
	return cars, err
}

func (s *Service) GetCar(id string) (*models.Car, error) {
	var car models.Car
	err := s.DB.Where("id = ?", id).First(&car).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (s *Service) CreateHotel(hotel *models.Hotel) error {
	return s.DB.Create(hotel).Error
}

func (s *Service) ListHotels() ([]models.Hotel, error) {
	var hotels []models.Hotel
	err := s.DB.Order("created_at desc").Find(&hotels).Error
	return hotels, err
}

func (s *Service) GetHotel(id string) (*models.Hotel, error) {
	var hotel models.Hotel
	err := s.DB.Where("id = ?", id).First(&hotel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (s *Service) CreateRoom(room *models.HotelRoom) error {
	return s.DB.Create(room).Error
}

func (s *Service) ListRooms(hotelID string) ([]models.HotelRoom, error) {
	var rooms []models.HotelRoom
	err := s.DB.Where("hotel_id = ?", hotelID).Order("created_at desc").Find(&rooms).Error
	return rooms, err
}

func (s *Service) GetRoom(id string) (*models.HotelRoom, error) {
	var room models.HotelRoom
	err := s.DB.Where("id = ?", id).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// --- Bookings ---

func (s *Service) CreateBooking(booking *models.Booking) error {
	if err := s.DB.Create(booking).Error; err != nil {
		log.Printf("ERROR: Failed to create booking for %s/%s: %v", booking.PostType, booking.PostID, err)
		return err
	}
	return nil
}

func (s *Service) GetBookingByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Where("id = ?", id).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *Service) ListBookingsForUser(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&bookings).Error
	return bookings, err
}

func (s *Service) ListAllBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.Order("created_at desc").Find(&bookings).Error
	return bookings, err
}

// UpdateBookingStatus applies the outcome of a payment verify/update cycle.
func (s *Service) UpdateBookingStatus(id string, status models.BookingStatus, paymentRef string) error {
	updates := map[string]interface{}{"status": status}
	if paymentRef != "" {
		updates["payment_ref"] = paymentRef
	}
	result := s.DB.Model(&models.Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
