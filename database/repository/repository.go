package repository

import (
	"fmt"

	paymentRepo "innkeeper/database/repository/payment"
	reservationRepo "innkeeper/database/repository/reservation"
	roomRepo "innkeeper/database/repository/room"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Re-export the repository interfaces.
type RoomRepository = roomRepo.RoomRepository

type ReservationRepository = reservationRepo.ReservationRepository

type PaymentRepository = paymentRepo.PaymentRepository

// Set bundles one driver's room, reservation and payment repositories.
type Set struct {
	Rooms        RoomRepository
	Reservations ReservationRepository
	Payments     PaymentRepository
}

// SQLModels lists the GORM models to auto-migrate for the mysql driver.
func SQLModels() []any {
	return []any{&roomRepo.RoomRecord{}, &reservationRepo.ReservationRecord{}, &paymentRepo.PaymentRow{}}
}

// NewMongoSet builds the Mongo-backed repositories, creating indexes as it goes.
func NewMongoSet(db *mongo.Database) (Set, error) {
	rooms, err := roomRepo.NewMongoRoomRepo(db)
	if err != nil {
		return Set{}, fmt.Errorf("room repository: %w", err)
	}
	reservations, err := reservationRepo.NewMongoReservationRepo(db)
	if err != nil {
		return Set{}, fmt.Errorf("reservation repository: %w", err)
	}
	payments, err := paymentRepo.NewMongoPaymentRepo(db)
	if err != nil {
		return Set{}, fmt.Errorf("payment repository: %w", err)
	}
	return Set{Rooms: rooms, Reservations: reservations, Payments: payments}, nil
}

// NewGormSet builds the MySQL-backed repositories.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Rooms:        roomRepo.NewGormRoomRepo(db),
		Reservations: reservationRepo.NewGormReservationRepo(db),
		Payments:     paymentRepo.NewGormPaymentRepo(db),
	}
}

// NewMemorySet builds process-local repositories.
func NewMemorySet() Set {
	return Set{
		Rooms:        roomRepo.NewMemoryRoomRepo(),
		Reservations: reservationRepo.NewMemoryReservationRepo(),
		Payments:     paymentRepo.NewMemoryPaymentRepo(),
	}
}
