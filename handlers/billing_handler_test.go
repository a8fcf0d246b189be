package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestComputeAmountDueDerivesFromTotalAndDiscount(t *testing.T) {
	assert.Equal(t, 900.0, ComputeAmountDue(1000, 100, 0))
	assert.Equal(t, 1000.0, ComputeAmountDue(1000, 0, 0))
}

func TestComputeAmountDueKeepsCallerValue(t *testing.T) {
	// Partial payments send their own amount due; the server must not
	// overwrite it.
	assert.Equal(t, 250.0, ComputeAmountDue(1000, 100, 250))
}

func TestComputeAmountDueClampsNegative(t *testing.T) {
	assert.Equal(t, 0.0, ComputeAmountDue(100, 500, 0))
}

func TestBillRequestRequiresPatientName(t *testing.T) {
	v := validator.New()

	assert.Error(t, v.Struct(&BillRequest{TotalAmount: 100}))
	assert.NoError(t, v.Struct(&BillRequest{PatientName: "Asha Rao"}))
}

func TestBillRequestRestrictsStatus(t *testing.T) {
	v := validator.New()

	assert.Error(t, v.Struct(&BillRequest{PatientName: "Asha Rao", Status: "overdue"}))
	for _, status := range []string{"paid", "unpaid", "partial", ""} {
		assert.NoError(t, v.Struct(&BillRequest{PatientName: "Asha Rao", Status: status}))
	}
}
