package validator

import (
	"errors"
	"time"

	bookingserrors "liora/internal/bookings/errors"
	"liora/pkg/logger"
	"liora/pkg/model"
	"liora/pkg/validator"
)

// Stay is a validated booking date range at UTC midnight.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

type BookingValidator struct {
	validate *validator.Validator
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateStay checks the request shape, parses both dates and requires check-in before check-out.
// Past dates are accepted.
func (v *BookingValidator) ValidateStay(req *model.CreateBookingRequest) (*Stay, error) {
	if err := v.validate.Struct(req); err != nil {
		return nil, err
	}

	checkIn, err := model.ParseDate(req.CheckIn)
	if err != nil {
		return nil, validator.Field("check_in", dateMessage("check_in", err))
	}
	checkOut, err := model.ParseDate(req.CheckOut)
	if err != nil {
		return nil, validator.Field("check_out", dateMessage("check_out", err))
	}

	if !checkIn.Before(checkOut) {
		return nil, validator.Field("check_out", bookingserrors.ErrInvalidDateRange.Error())
	}

	return &Stay{CheckIn: checkIn, CheckOut: checkOut}, nil
}

func dateMessage(field string, err error) string {
	if errors.Is(err, model.ErrInvalidDate) {
		return field + " must be a date (YYYY-MM-DD or RFC3339)"
	}
	return err.Error()
}
