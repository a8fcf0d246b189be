package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBuildAppointmentFilterEmpty(t *testing.T) {
	query := BuildAppointmentFilter(AppointmentFilters{})
	assert.Empty(t, query)
}

func TestBuildAppointmentFilterExactMatches(t *testing.T) {
	query := BuildAppointmentFilter(AppointmentFilters{
		Date:   "2025-03-14",
		Status: "completed",
	})

	assert.Equal(t, "2025-03-14", query["date"])
	assert.Equal(t, "completed", query["status"])
	assert.Len(t, query, 2)
}

func TestBuildAppointmentFilterStatusIsCaseSensitive(t *testing.T) {
	// Status must be an exact match, not a regex; "Completed" and
	// "completed" are different filters.
	query := BuildAppointmentFilter(AppointmentFilters{Status: "Completed"})
	assert.Equal(t, "Completed", query["status"])
}

func TestBuildAppointmentFilterSubstringMatches(t *testing.T) {
	query := BuildAppointmentFilter(AppointmentFilters{
		Clinic:  "green",
		Patient: "smith",
		Doctor:  "patel",
	})

	assert.Equal(t, bson.M{"$regex": "green", "$options": "i"}, query["clinic"])
	assert.Equal(t, bson.M{"$regex": "smith", "$options": "i"}, query["patientName"])
	assert.Equal(t, bson.M{"$regex": "patel", "$options": "i"}, query["doctorName"])
}

func TestBuildAppointmentFilterIgnoresEmptyFields(t *testing.T) {
	query := BuildAppointmentFilter(AppointmentFilters{Doctor: "patel"})

	assert.Len(t, query, 1)
	assert.NotContains(t, query, "date")
	assert.NotContains(t, query, "clinic")
	assert.NotContains(t, query, "patientName")
	assert.NotContains(t, query, "status")
}

func TestMaxAppointmentResults(t *testing.T) {
	assert.Equal(t, 500, maxAppointmentResults)
}
