// internal/domain/sla/contract.go
package sla

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// MaxContractStartDay is the last start day every month has.
const MaxContractStartDay = 28

var ErrInvalidStartDay = errors.New("contract start day must be between 1 and 28")

// Month is one contract month, both ends inclusive.
type Month struct {
	First civil.Date
	Last  civil.Date
}

// Contains reports whether d falls inside the month.
func (m Month) Contains(d civil.Date) bool {
	return !d.Before(m.First) && !d.After(m.Last)
}

func (m Month) String() string {
	return m.First.String() + ".." + m.Last.String()
}

// ValidateStartDay checks that startDay exists in every month.
func ValidateStartDay(startDay int) error {
	if startDay < 1 || startDay > MaxContractStartDay {
		return fmt.Errorf("%w: got %d", ErrInvalidStartDay, startDay)
	}
	return nil
}

// ContractMonth returns the contract month containing d for a billing cycle
// that starts on startDay of every month.
func ContractMonth(d civil.Date, startDay int) (Month, error) {
	if err := ValidateStartDay(startDay); err != nil {
		return Month{}, err
	}
	first := civil.Date{Year: d.Year, Month: d.Month, Day: startDay}
	if d.Day < startDay {
		first = first.AddMonths(-1)
	}
	return Month{
		First: first,
		Last:  first.AddMonths(1).AddDays(-1),
	}, nil
}
