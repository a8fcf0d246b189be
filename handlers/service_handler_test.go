package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/onecare/backend/models"
	"github.com/stretchr/testify/assert"
)

func TestFlipActive(t *testing.T) {
	svc := models.Service{Name: "X-Ray", Active: true}

	flipped := flipActive(svc)
	assert.False(t, flipped.Active)
	assert.Equal(t, "X-Ray", flipped.Name)
}

func TestFlipActiveTwiceRestores(t *testing.T) {
	for _, active := range []bool{true, false} {
		svc := models.Service{Name: "Consultation", Active: active}
		assert.Equal(t, svc, flipActive(flipActive(svc)))
	}
}

func TestServiceRequestRequiresName(t *testing.T) {
	v := validator.New()

	assert.Error(t, v.Struct(&ServiceRequest{Charges: 100}))
	assert.NoError(t, v.Struct(&ServiceRequest{Name: "Consultation"}))
}
