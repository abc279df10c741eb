package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newIntake() *Intake {
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	return &Intake{
		StartDate:            start,
		EndDate:              start.AddDate(0, 0, 14),
		RegistrationOpensAt:  start.AddDate(0, -1, 0),
		RegistrationClosesAt: start.AddDate(0, 0, -1),
		Capacity:             20,
		Registered:           5,
		Status:               IntakeStatusScheduled,
	}
}

func TestIntakeIsOpen(t *testing.T) {
	in := newIntake()

	assert.True(t, in.IsOpen(in.RegistrationOpensAt))
	assert.True(t, in.IsOpen(in.RegistrationClosesAt))
	assert.False(t, in.IsOpen(in.RegistrationOpensAt.Add(-time.Second)))
	assert.False(t, in.IsOpen(in.RegistrationClosesAt.Add(time.Second)))

	full := newIntake()
	full.Registered = full.Capacity
	assert.False(t, full.IsOpen(full.RegistrationOpensAt))
	assert.Equal(t, 0, full.SeatsLeft())

	cancelled := newIntake()
	cancelled.Status = IntakeStatusCancelled
	assert.False(t, cancelled.IsOpen(cancelled.RegistrationOpensAt))
}

func TestIntakeValidate(t *testing.T) {
	assert.NoError(t, newIntake().Validate())

	in := newIntake()
	in.EndDate = in.StartDate.Add(-time.Hour)
	assert.ErrorIs(t, in.Validate(), ErrIntakeDates)

	in = newIntake()
	in.RegistrationClosesAt = in.RegistrationOpensAt.Add(-time.Hour)
	assert.ErrorIs(t, in.Validate(), ErrRegistrationWindow)

	in = newIntake()
	in.Capacity = 4
	assert.ErrorIs(t, in.Validate(), ErrCapacityBelowRegistered)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "certificate-iii-in-individual-support", Slugify("Certificate III in Individual Support"))
	assert.Equal(t, "first-aid-cpr", Slugify("  First Aid & CPR!! "))
	assert.Equal(t, "", Slugify("---"))
}
