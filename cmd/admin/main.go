// Command admin exports all bookings to an Excel workbook for the
// back-office. Run with the same DB_* environment as the server.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"travelbay/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	bookings, err := storageSvc.ListAllBookings()
	if err != nil {
		log.Fatalf("failed to load bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"Booking ID", "User ID", "Post ID", "Post Type", "Status", "Amount", "Payment Ref", "Created At"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID, b.UserID, b.PostID, string(b.PostType), string(b.Status),
			b.Amount, b.PaymentRef, b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	out := "bookings_export.xlsx"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := f.SaveAs(out); err != nil {
		log.Fatalf("failed to write %s: %v", out, err)
	}
	log.Printf("Exported %d bookings to %s", len(bookings), out)
}
