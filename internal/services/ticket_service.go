package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders the e-ticket PDF for a confirmed booking.
type TicketService struct {
	BookingRepo repositories.BookingRepo
	TripRepo    repositories.TripRepo
	RequestID   string
}

// GenerateETicket builds the PDF for a booking that has reached
// confirmed or completed. Pending and cancelled bookings have no
// ticket to print.
func (s TicketService) GenerateETicket(bookingID int64) ([]byte, string, error) {
	b, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, "", err
	}
	if b.Status != models.BookingConfirmed && b.Status != models.BookingCompleted {
		return nil, "", domain.ValidationError{
			Field: "booking",
			Msg:   fmt.Sprintf("e-ticket is only available for confirmed bookings, status is %s", b.Status),
		}
	}

	trip, err := s.TripRepo.GetByID(b.TripID)
	if err != nil {
		return nil, "", err
	}

	utils.LogEvent(s.RequestID, "tickets", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(b, trip)
}

func buildETicketPDF(b models.Booking, trip models.Trip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Ref : %s", b.Reference),
		fmt.Sprintf("Route       : %s -> %s", safe(trip.RouteFrom, "-"), safe(trip.RouteTo, "-")),
		fmt.Sprintf("Date/Time   : %s %s", safe(dateOnly(trip.TripDate), "-"), safe(timeHM(trip.TripTime), "-")),
		fmt.Sprintf("Vehicle     : %s", safe(trip.VehicleCode, "-")),
		fmt.Sprintf("Seats       : %s", safe(strings.Join(b.SeatCodes, ", "), "-")),
		fmt.Sprintf("Status      : %s", strings.ToUpper(b.Status)),
		fmt.Sprintf("Issued      : %s", utils.FormatDateTime(time.Now())),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, p := range b.Passengers {
		row := fmt.Sprintf("%d) %s  Seat %s", i+1, safe(p.Name, "-"), safe(p.SeatCode, "-"))
		if strings.TrimSpace(p.Phone) != "" {
			row += "  (" + p.Phone + ")"
		}
		pdf.Cell(0, 6, row)
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fare  : "+utils.FormatRupiah(b.Fare))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Fees  : "+utils.FormatRupiah(b.Fees))
	pdf.Ln(7)
	pdf.Cell(0, 8, "Total : "+utils.FormatRupiah(b.Total))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this e-ticket at departure. Valid for the listed passengers and seats only.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(b.Reference))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
