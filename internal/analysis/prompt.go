package analysis

import (
	"fmt"
	"strings"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
)

// BuildPrompt assembles the instruction document for the generative
// endpoint: the query parameters, a dump of fetched real data when
// available, and the response contract. The generator is told to emit
// every key, using null/0/[] rather than omitting fields.
func BuildPrompt(query models.WeatherQuery, composite *models.CompositeForecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a weather likelihood analyst. Analyze expected conditions for latitude %s, longitude %s on %s (DD-MM-YYYY).\n\n",
		query.Latitude, query.Longitude, query.Date)

	if composite != nil {
		b.WriteString("Use the following real measurements from the Visual Crossing weather archive as ground truth.\n\n")
		writeObservation(&b, composite)
		writeHistorical(&b, composite)
		writeStatistics(&b, composite)
	} else {
		b.WriteString("No measured data is available; estimate from climatology for the coordinates and season.\n\n")
	}

	b.WriteString(`Respond with a single JSON object and nothing else. Every key below is required; use null, 0 or [] rather than omitting a key.
{
  "request_parameters": {"latitude": string, "longitude": string, "date": string},
  "overall_comfortability_score": {"score": number 0-100, "summary": string},
  "activities": {"suggestions": [string], "warnings": [string], "reminders": [string]},
  "weather_conditions": {
    "general_conditions": {"is_very_hot_percentage": number, "is_very_cold_percentage": number, "is_very_windy_percentage": number, "is_very_wet_percentage": number},
    "specific_variables": {"temperature_celsius": number, "rainfall_mm": number, "windspeed_kph": number, "dust_concentration_ug_m3": number, "snowfall_cm": number, "snow_depth_cm": number, "cloud_cover_percent": number, "air_quality_index": number, "humidity_percent": number}
  },
  "statistical_analysis": {
    "threshold_probabilities": [{"description": string, "percentage": number}],
    "long_term_mean_comparison": [{"variable": string, "mean_value": number, "deviation_from_mean": number}],
    "trend_estimation": {"heavy_rain_trend": string, "high_temperature_trend": string}
  },
  "temperature_graph_data": {"description": string, "year_minus_5": [number x4 quarters], "year_minus_4": [..], "year_minus_3": [..], "year_minus_2": [..], "year_minus_1": [..]},
  "rain_graph_data": {same shape},
  "snow_graph_data": {same shape}
}
`)

	return b.String()
}

func writeObservation(b *strings.Builder, composite *models.CompositeForecast) {
	day := composite.Day()
	if day == nil {
		return
	}
	label := "Current conditions"
	if composite.Forecast != nil {
		label = "Forecast conditions"
	}
	fmt.Fprintf(b, "%s for %s:\n", label, day.Date)
	fmt.Fprintf(b, "- temperature %.1f C (min %.1f, max %.1f, feels like %.1f)\n", day.Temp, day.TempMin, day.TempMax, day.FeelsLike)
	fmt.Fprintf(b, "- humidity %.0f%%, precipitation %.1f mm (probability %.0f%%), snow %.1f cm\n", day.Humidity, day.Precip, day.PrecipProb, day.Snow)
	fmt.Fprintf(b, "- wind %.1f kph (gust %.1f), pressure %.1f hPa, cloud cover %.0f%%, visibility %.1f km, UV %.1f\n", day.WindSpeed, day.WindGust, day.Pressure, day.CloudCover, day.Visibility, day.UVIndex)
	if day.Conditions != "" {
		fmt.Fprintf(b, "- conditions: %s\n", day.Conditions)
	}
	b.WriteString("\n")
}

func writeHistorical(b *strings.Builder, composite *models.CompositeForecast) {
	if len(composite.Historical) == 0 {
		return
	}
	fmt.Fprintf(b, "Same-day observations from %d preceding years (oldest first):\n", len(composite.Historical))
	for _, o := range composite.Historical {
		fmt.Fprintf(b, "- %s: temp %.1f C, precip %.1f mm, humidity %.0f%%, wind %.1f kph\n", o.Date, o.Temp, o.Precip, o.Humidity, o.WindSpeed)
	}
	avg := composite.MonthlyAverages
	fmt.Fprintf(b, "Historical averages: temp %.2f C, precip %.2f mm, humidity %.2f%%, wind %.2f kph\n\n", avg.Temp, avg.Precip, avg.Humidity, avg.WindSpeed)
}

func writeStatistics(b *strings.Builder, composite *models.CompositeForecast) {
	s := composite.Statistics
	if s.YearsOfData == 0 {
		return
	}
	fmt.Fprintf(b, "Derived statistics over %d years:\n", s.YearsOfData)
	fmt.Fprintf(b, "- temperature: mean %.2f, min %.2f, max %.2f, stddev %.2f, trend %s\n",
		s.Temperature.Mean, s.Temperature.Min, s.Temperature.Max, s.Temperature.StdDev, s.Temperature.Trend)
	fmt.Fprintf(b, "- precipitation: mean %.2f, max %.2f, probability %.2f%%, trend %s\n\n",
		s.Precipitation.Mean, s.Precipitation.Max, s.Precipitation.Probability, s.Precipitation.Trend)
}
