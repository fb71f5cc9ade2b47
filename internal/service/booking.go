package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/queue"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

// SlotLedger is the single transactional surface through which bookings
// touch slot state.  Promote-if-absent, the capacity check, the increment
// and the booking write form one atomic unit behind this method; no caller
// can observe or act on an intermediate state.  repository.SlotRepo is the
// MySQL implementation, repository/memory.Ledger the in-memory one.
type SlotLedger interface {
	PromoteAndBook(ctx context.Context, req repository.BookRequest) (repository.BookResult, error)
}

// Publisher emits a booking-confirmed event after a successful commit.
// Publication is best effort: the booking is already durable and a broker
// outage must not fail the request.
type Publisher func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// BookingRequest carries the client's slot selection and contact fields.
// StudentCount arrives as a string because the booking form submits it as
// free text; the service parses it exactly once at this boundary.
type BookingRequest struct {
	WorkshopTemplateID uint64 `json:"workshop_template_id"`
	Date               string `json:"date"`
	ParentName         string `json:"parent_name"`
	Phone              string `json:"phone"`
	StudentName        string `json:"student_name"`
	StudentCount       string `json:"student_count"`
	Note               string `json:"note"`
}

// ErrInvalidBooking wraps all field-validation failures so handlers can map
// them to 400 without enumerating causes.
var ErrInvalidBooking = errors.New("invalid booking request")

// BookingService turns validated booking requests into committed bookings
// through the slot ledger.
type BookingService struct {
	ledger  SlotLedger
	publish Publisher
}

// NewBookingService constructs a BookingService.  publish may be nil when
// no broker is configured.
func NewBookingService(ledger SlotLedger, publish Publisher) *BookingService {
	if ledger == nil {
		panic("nil ledger passed to NewBookingService")
	}
	return &BookingService{ledger: ledger, publish: publish}
}

// Submit validates the request, runs the atomic promote+check+commit
// against the ledger and returns the confirmed booking.  Failures surface
// as the repository sentinels (ErrSlotFull, ErrSlotCancelled,
// ErrTemplateInactive, ErrNotAnOccurrence, ErrWriteConflict) or
// ErrInvalidBooking; every one of them resolves to "show the caller a
// refreshed slot list".
func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	booking, err := validateBooking(&req)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.PromoteAndBook(ctx, repository.BookRequest{
		TemplateID: req.WorkshopTemplateID,
		Date:       req.Date,
		Booking:    *booking,
	})
	if err != nil {
		return nil, err
	}

	if s.publish != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:     res.Booking.ID,
			Reference:     res.Booking.Reference,
			SlotID:        res.Booking.WorkshopSlotID,
			TemplateID:    res.Booking.WorkshopTemplateID,
			WorkshopTitle: res.TemplateTitle,
			Date:          res.Date,
			StartTime:     res.StartTime.String(),
			EndTime:       res.EndTime.String(),
			ParentName:    res.Booking.ParentName,
			StudentName:   res.Booking.StudentName,
			BookedCount:   res.BookedCount,
			Capacity:      res.Capacity,
			ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publish(ctx, ev); err != nil {
			log.Printf("booking %s: publish confirmed event failed: %v", res.Booking.Reference, err)
		}
	}

	b := res.Booking
	return &b, nil
}

// validateBooking rejects malformed input before any transaction begins
// and builds the booking record with a fresh public reference.
func validateBooking(req *BookingRequest) (*model.Booking, error) {
	req.ParentName = strings.TrimSpace(req.ParentName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.StudentName = strings.TrimSpace(req.StudentName)
	req.Date = strings.TrimSpace(req.Date)

	if req.WorkshopTemplateID == 0 {
		return nil, invalid("workshop_template_id is required")
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return nil, invalid("date must be a calendar date (YYYY-MM-DD)")
	}
	if req.ParentName == "" {
		return nil, invalid("parent_name is required")
	}
	if req.Phone == "" {
		return nil, invalid("phone is required")
	}
	if req.StudentName == "" {
		return nil, invalid("student_name is required")
	}
	count := 1
	if strings.TrimSpace(req.StudentCount) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(req.StudentCount))
		if err != nil || n < 0 {
			return nil, invalid("student_count must be a non-negative integer")
		}
		count = n
	}

	return &model.Booking{
		Reference:    uuid.NewString(),
		ParentName:   req.ParentName,
		Phone:        req.Phone,
		StudentName:  req.StudentName,
		StudentCount: uint32(count),
		Note:         strings.TrimSpace(req.Note),
	}, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidBooking, msg)
}
