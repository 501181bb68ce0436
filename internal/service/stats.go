package service

import (
	"math"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func consumptions(readings []models.EnergyReading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Consumption
	}
	return out
}

func efficiencies(readings []models.EnergyReading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Efficiency
	}
	return out
}

// round1 keeps metadata values readable (one decimal place).
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
