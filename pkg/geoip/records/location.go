package records

import "github.com/TomasB/geolookup/internal/raw"

// Location is the approximate position associated with an IP address. Coordinates are not
// precise and must not be used to identify a household.
type Location struct {
	// AccuracyRadius in kilometers around the coordinates, at 67% confidence.
	AccuracyRadius *uint
	// AverageIncome in US dollars. Insights only.
	AverageIncome *uint
	Latitude      *float64
	Longitude     *float64
	// Deprecated: MetroCode is no longer maintained.
	MetroCode *uint
	// PopulationDensity per square kilometer. Insights only.
	PopulationDensity *uint
	// TimeZone from the IANA database, e.g. "America/New_York".
	TimeZone *string
}

func NewLocation(m map[string]any) Location {
	return Location{
		AccuracyRadius:    raw.Uint(m, "accuracy_radius"),
		AverageIncome:     raw.Uint(m, "average_income"),
		Latitude:          raw.Float(m, "latitude"),
		Longitude:         raw.Float(m, "longitude"),
		MetroCode:         raw.Uint(m, "metro_code"),
		PopulationDensity: raw.Uint(m, "population_density"),
		TimeZone:          raw.String(m, "time_zone"),
	}
}

func (l Location) ToMap() map[string]any {
	d := raw.Dict{}
	d.Uint("accuracy_radius", l.AccuracyRadius)
	d.Uint("average_income", l.AverageIncome)
	d.Float("latitude", l.Latitude)
	d.Float("longitude", l.Longitude)
	d.Uint("metro_code", l.MetroCode)
	d.Uint("population_density", l.PopulationDensity)
	d.String("time_zone", l.TimeZone)
	return d
}

func (l Location) Equal(o Location) bool { return raw.Equal(l.ToMap(), o.ToMap()) }

// Postal holds the postal code of the location. In some countries it is only a prefix.
type Postal struct {
	Code       *string
	Confidence *int
}

func NewPostal(m map[string]any) Postal {
	return Postal{
		Code:       raw.String(m, "code"),
		Confidence: raw.Int(m, "confidence"),
	}
}

func (p Postal) ToMap() map[string]any {
	d := raw.Dict{}
	d.String("code", p.Code)
	d.Int("confidence", p.Confidence)
	return d
}

func (p Postal) Equal(o Postal) bool { return raw.Equal(p.ToMap(), o.ToMap()) }

// MaxMind is account information returned by the web service. It is never set for
// database lookups.
type MaxMind struct {
	QueriesRemaining *int
}

func NewMaxMind(m map[string]any) MaxMind {
	return MaxMind{QueriesRemaining: raw.Int(m, "queries_remaining")}
}

func (a MaxMind) ToMap() map[string]any {
	d := raw.Dict{}
	d.Int("queries_remaining", a.QueriesRemaining)
	return d
}

func (a MaxMind) Equal(o MaxMind) bool { return raw.Equal(a.ToMap(), o.ToMap()) }
