package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
)

// ErrMissingParameters is returned when any of latitude, longitude, date is absent.
var ErrMissingParameters = errors.New("Missing required parameters")

// ErrInvalidDateFormat is returned when the date is not a valid DD-MM-YYYY calendar date.
var ErrInvalidDateFormat = errors.New("Invalid date format")

// ErrInvalidLatitude is returned when latitude is not a number in [-90, 90].
var ErrInvalidLatitude = errors.New("Invalid latitude")

// ErrInvalidLongitude is returned when longitude is not a number in [-180, 180].
var ErrInvalidLongitude = errors.New("Invalid longitude")

// datePattern matches exactly two digits, dash, two digits, dash, four digits.
var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

const (
	queryDateLayout = "02-01-2006"
	apiDateLayout   = "2006-01-02"
)

// ValidateQuery checks the three query parameters in order: presence, date
// format, latitude range, longitude range. The first failing check wins.
// On success the returned query carries the date reformatted to YYYY-MM-DD
// for the weather-data provider.
func ValidateQuery(latitude, longitude, date string) (models.WeatherQuery, error) {
	latitude = strings.TrimSpace(latitude)
	longitude = strings.TrimSpace(longitude)
	date = strings.TrimSpace(date)

	if latitude == "" || longitude == "" || date == "" {
		return models.WeatherQuery{}, ErrMissingParameters
	}

	if !datePattern.MatchString(date) {
		return models.WeatherQuery{}, ErrInvalidDateFormat
	}
	parsed, err := time.Parse(queryDateLayout, date)
	if err != nil {
		return models.WeatherQuery{}, ErrInvalidDateFormat
	}

	lat, err := strconv.ParseFloat(latitude, 64)
	if err != nil || lat < -90 || lat > 90 {
		return models.WeatherQuery{}, ErrInvalidLatitude
	}

	lon, err := strconv.ParseFloat(longitude, 64)
	if err != nil || lon < -180 || lon > 180 {
		return models.WeatherQuery{}, ErrInvalidLongitude
	}

	return models.WeatherQuery{
		Latitude:  latitude,
		Longitude: longitude,
		Date:      date,
		APIDate:   parsed.Format(apiDateLayout),
	}, nil
}

// ParseAPIDate parses a YYYY-MM-DD date produced by ValidateQuery.
func ParseAPIDate(apiDate string) (time.Time, error) {
	return time.Parse(apiDateLayout, apiDate)
}
