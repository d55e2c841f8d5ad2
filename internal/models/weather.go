package models

// DailyObservation is one calendar day's weather record for a location as
// returned by the weather-data provider. Immutable once fetched.
type DailyObservation struct {
	Date       string  `json:"date"`
	Temp       float64 `json:"temp"`
	TempMin    float64 `json:"tempMin"`
	TempMax    float64 `json:"tempMax"`
	FeelsLike  float64 `json:"feelsLike"`
	Humidity   float64 `json:"humidity"`
	Precip     float64 `json:"precip"`
	PrecipProb float64 `json:"precipProb"`
	Snow       float64 `json:"snow"`
	SnowDepth  float64 `json:"snowDepth"`
	WindSpeed  float64 `json:"windSpeed"`
	WindGust   float64 `json:"windGust"`
	WindDir    float64 `json:"windDir"`
	Pressure   float64 `json:"pressure"`
	CloudCover float64 `json:"cloudCover"`
	Visibility float64 `json:"visibility"`
	UVIndex    float64 `json:"uvIndex"`
	Conditions string  `json:"conditions"`
}

// Trend classification labels derived from the sign and magnitude of a
// linear-regression slope over a short time series.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"
)

// TemperatureStats holds descriptive statistics over the historical
// temperature series.
type TemperatureStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
	Trend  string  `json:"trend"`
}

// PrecipitationStats holds descriptive statistics over the historical
// precipitation series. Probability is the percentage of observed days
// with any precipitation.
type PrecipitationStats struct {
	Mean        float64 `json:"mean"`
	Max         float64 `json:"max"`
	Probability float64 `json:"probability"`
	Trend       string  `json:"trend"`
}

// DescriptiveStatistics is recomputed on every request from a historical
// set. For an empty set all numeric fields are zero and trends are Stable.
type DescriptiveStatistics struct {
	Temperature   TemperatureStats   `json:"temperature"`
	Precipitation PrecipitationStats `json:"precipitation"`
	YearsOfData   int                `json:"yearsOfData"`
}

// MonthlyAverages are simple arithmetic means across the historical set.
type MonthlyAverages struct {
	Temp      float64 `json:"temp"`
	Precip    float64 `json:"precip"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
}

// WeatherQuery carries the three validated input fields. Date is in
// DD-MM-YYYY form as received; APIDate is the YYYY-MM-DD reformatting
// used against the weather-data provider.
type WeatherQuery struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Date      string `json:"date"`
	APIDate   string `json:"-"`
}

// CompositeForecast groups everything fetched and derived for one request.
// Exactly one of Current/Forecast is set: Current when the target date is
// today or in the past, Forecast otherwise. Constructed fresh per request
// and discarded after the response is sent.
type CompositeForecast struct {
	Latitude        string                `json:"latitude"`
	Longitude       string                `json:"longitude"`
	ResolvedAddress string                `json:"resolvedAddress,omitempty"`
	Current         *DailyObservation     `json:"current,omitempty"`
	Forecast        *DailyObservation     `json:"forecast,omitempty"`
	Historical      []DailyObservation    `json:"historical"`
	MonthlyAverages MonthlyAverages       `json:"monthlyAverages"`
	Statistics      DescriptiveStatistics `json:"statistics"`
}

// Day returns whichever of Current/Forecast is populated.
func (c *CompositeForecast) Day() *DailyObservation {
	if c.Current != nil {
		return c.Current
	}
	return c.Forecast
}

// ActualData is the flattened measurement block appended to the analysis
// document. Field values are copied from the fetched observation without
// transformation, only renamed.
type ActualData struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	Precip      float64 `json:"precipitation"`
	PrecipProb  float64 `json:"precipitation_probability"`
	Snow        float64 `json:"snow"`
	SnowDepth   float64 `json:"snow_depth"`
	WindSpeed   float64 `json:"windspeed"`
	WindGust    float64 `json:"wind_gust"`
	Pressure    float64 `json:"pressure"`
	CloudCover  float64 `json:"cloud_cover"`
	Visibility  float64 `json:"visibility"`
	UVIndex     float64 `json:"uv_index"`
	Conditions  string  `json:"conditions"`
}

// ObservationData flattens an observation into the ActualData shape.
func ObservationData(o *DailyObservation) *ActualData {
	if o == nil {
		return nil
	}
	return &ActualData{
		Date:        o.Date,
		Temperature: o.Temp,
		TempMin:     o.TempMin,
		TempMax:     o.TempMax,
		FeelsLike:   o.FeelsLike,
		Humidity:    o.Humidity,
		Precip:      o.Precip,
		PrecipProb:  o.PrecipProb,
		Snow:        o.Snow,
		SnowDepth:   o.SnowDepth,
		WindSpeed:   o.WindSpeed,
		WindGust:    o.WindGust,
		Pressure:    o.Pressure,
		CloudCover:  o.CloudCover,
		Visibility:  o.Visibility,
		UVIndex:     o.UVIndex,
		Conditions:  o.Conditions,
	}
}

// VisualCrossingData is the real-data block merged onto the generated
// analysis document so the frontend can render fetched measurements
// alongside the generated narrative.
type VisualCrossingData struct {
	Source             string                `json:"source"`
	Location           string                `json:"location"`
	ActualData         *ActualData           `json:"actualData"`
	HistoricalAverages MonthlyAverages       `json:"historicalAverages"`
	Statistics         DescriptiveStatistics `json:"statistics"`
}
