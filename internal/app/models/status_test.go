package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFill(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  Status
	}{
		{"empty section", 0.0, StatusOpen},
		{"below near threshold", 0.74, StatusOpen},
		{"at near threshold", 0.75, StatusNear},
		{"just under full", 0.999, StatusNear},
		{"exactly full", 1.0, StatusFull},
		{"over-enrolled", 1.4, StatusFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFill(tt.ratio))
		})
	}
}

func TestFillRatio(t *testing.T) {
	assert.Equal(t, 0.8, FillRatio(20, 25))
	assert.Equal(t, 1.25, FillRatio(25, 20))
	assert.Equal(t, 0.0, FillRatio(10, 0), "zero capacity must not divide")
}
