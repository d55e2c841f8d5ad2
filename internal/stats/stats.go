package stats

import (
	"math"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
)

// slopeThreshold is the regression-slope magnitude below which a series is
// classified Stable. Comparisons use unrounded values.
const slopeThreshold = 0.1

// Compute derives descriptive statistics from a historical set. The input
// must be ordered chronologically oldest to newest; trend direction depends
// on it. An empty set yields all-zero statistics with Stable trends, never
// an error. Presented values are rounded to 2 decimal places.
func Compute(observations []models.DailyObservation) models.DescriptiveStatistics {
	n := len(observations)
	if n == 0 {
		return models.DescriptiveStatistics{
			Temperature:   models.TemperatureStats{Trend: models.TrendStable},
			Precipitation: models.PrecipitationStats{Trend: models.TrendStable},
		}
	}

	temps := make([]float64, n)
	precips := make([]float64, n)
	for i, o := range observations {
		temps[i] = o.Temp
		precips[i] = o.Precip
	}

	tMin, tMax := extrema(temps)
	_, pMax := extrema(precips)

	wetDays := 0
	for _, p := range precips {
		if p > 0 {
			wetDays++
		}
	}

	return models.DescriptiveStatistics{
		Temperature: models.TemperatureStats{
			Mean:   round2(mean(temps)),
			Min:    round2(tMin),
			Max:    round2(tMax),
			StdDev: round2(stdDev(temps)),
			Trend:  Trend(temps),
		},
		Precipitation: models.PrecipitationStats{
			Mean:        round2(mean(precips)),
			Max:         round2(pMax),
			Probability: round2(float64(wetDays) / float64(n) * 100),
			Trend:       Trend(precips),
		},
		YearsOfData: n,
	}
}

// MonthlyAverages computes per-variable arithmetic means across the set.
// Zero values for an empty set.
func MonthlyAverages(observations []models.DailyObservation) models.MonthlyAverages {
	if len(observations) == 0 {
		return models.MonthlyAverages{}
	}
	var t, p, h, w float64
	for _, o := range observations {
		t += o.Temp
		p += o.Precip
		h += o.Humidity
		w += o.WindSpeed
	}
	n := float64(len(observations))
	return models.MonthlyAverages{
		Temp:      round2(t / n),
		Precip:    round2(p / n),
		Humidity:  round2(h / n),
		WindSpeed: round2(w / n),
	}
}

// Trend classifies a series by the sign of its ordinary-least-squares slope
// of value against index. Fewer than two points is Stable.
func Trend(values []float64) string {
	if len(values) < 2 {
		return models.TrendStable
	}
	slope := Slope(values)
	switch {
	case slope > slopeThreshold:
		return models.TrendIncreasing
	case slope < -slopeThreshold:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// Slope returns the OLS regression slope of values against their indices.
func Slope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation (divide by N, not N-1).
func stdDev(values []float64) float64 {
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func extrema(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
