// Package ageband computes a child's age against a reference instant and
// classifies it into a developmental age band.
//
// Every route that needs an age goes through Compute and Classify; there is
// deliberately no other age arithmetic in the repository, and no function here
// reads a clock. Callers pass the reference instant explicitly (normally
// requestcontext.Now), which keeps classification deterministic and testable.
package ageband

import (
	"math"
	"time"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Age is a person's age broken down for display and classification.
//
// TotalMonths is the authoritative value: band matching and authorization
// always compare whole months. The rounded decimal form exists for display
// only; comparing it would misclassify children near a band boundary.
type Age struct {
	Years       int
	Months      int
	TotalMonths int
}

// DecimalYears returns the display form, years plus months/12 rounded to one
// decimal place. Never use this for band matching.
func (a Age) DecimalYears() float64 {
	return math.Round((float64(a.Years)+float64(a.Months)/12)*10) / 10
}

// Compute returns the age at asOf for the given birthdate.
//
// The day-of-month borrow is applied exactly once: when asOf's day is before
// the birthdate's day, the current month is not yet complete, so one month is
// subtracted before negative months borrow twelve from the years.
//
// Errors: CodeInvalidAge when the birthdate is after asOf (date precision;
// time-of-day is ignored).
func Compute(birthdate, asOf time.Time) (Age, error) {
	by, bm, bd := birthdate.Date()
	ay, am, ad := asOf.Date()

	if by > ay || (by == ay && (bm > am || (bm == am && bd > ad))) {
		return Age{}, dErrors.New(dErrors.CodeInvalidAge, "birthdate is in the future")
	}

	years := ay - by
	months := int(am) - int(bm)
	if ad < bd {
		months--
	}
	if months < 0 {
		months += 12
		years--
	}

	return Age{
		Years:       years,
		Months:      months,
		TotalMonths: years*12 + months,
	}, nil
}
