// Package records contains the typed sub-parts of a GeoIP2 response: places with localized
// names, location, postal, traits and account information.
//
// Records are built from raw maps and are immutable afterwards. Fields that are absent from
// the raw data are nil (or false for flags); unknown keys are ignored.
package records

import (
	"slices"

	"github.com/TomasB/geolookup/internal/raw"
)

// DefaultLocales is the locale preference used when none is given.
var DefaultLocales = []string{"en"}

// Locales returns the preference to use for locales, falling back to DefaultLocales.
func Locales(locales []string) []string {
	if len(locales) == 0 {
		return slices.Clone(DefaultLocales)
	}
	return slices.Clone(locales)
}

// Place is the part shared by every record that has localized names.
type Place struct {
	// Names maps locale codes such as "en" or "zh-CN" to a display name.
	Names map[string]string

	locales []string
}

func newPlace(locales []string, m map[string]any) Place {
	return Place{
		Names:   raw.Names(m, "names"),
		locales: Locales(locales),
	}
}

// Name returns the name in the first preferred locale that has one, or "" if none does.
func (p Place) Name() string {
	for _, locale := range p.locales {
		if name, ok := p.Names[locale]; ok {
			return name
		}
	}
	return ""
}

// City is the city associated with an IP address.
type City struct {
	Place
	// Confidence (0-100) that the city is correct. Insights and Enterprise only.
	Confidence *int
	GeoNameID  *uint
}

func NewCity(locales []string, m map[string]any) City {
	return City{
		Place:      newPlace(locales, m),
		Confidence: raw.Int(m, "confidence"),
		GeoNameID:  raw.Uint(m, "geoname_id"),
	}
}

func (c City) ToMap() map[string]any {
	d := raw.Dict{}
	d.Int("confidence", c.Confidence)
	d.Uint("geoname_id", c.GeoNameID)
	d.Names("names", c.Names)
	return d
}

func (c City) Equal(o City) bool { return raw.Equal(c.ToMap(), o.ToMap()) }

// Continent is the continent associated with an IP address.
type Continent struct {
	Place
	// Code is a two character continent code like "NA" or "OC".
	Code      *string
	GeoNameID *uint
}

func NewContinent(locales []string, m map[string]any) Continent {
	return Continent{
		Place:     newPlace(locales, m),
		Code:      raw.String(m, "code"),
		GeoNameID: raw.Uint(m, "geoname_id"),
	}
}

func (c Continent) ToMap() map[string]any {
	d := raw.Dict{}
	d.String("code", c.Code)
	d.Uint("geoname_id", c.GeoNameID)
	d.Names("names", c.Names)
	return d
}

func (c Continent) Equal(o Continent) bool { return raw.Equal(c.ToMap(), o.ToMap()) }

// Country is a country associated with an IP address, either where it is located or where
// the block is registered.
type Country struct {
	Place
	Confidence        *int
	GeoNameID         *uint
	IsInEuropeanUnion bool
	// ISOCode is the ISO 3166-1 alpha-2 code of the country.
	ISOCode *string
}

func NewCountry(locales []string, m map[string]any) Country {
	return Country{
		Place:             newPlace(locales, m),
		Confidence:        raw.Int(m, "confidence"),
		GeoNameID:         raw.Uint(m, "geoname_id"),
		IsInEuropeanUnion: raw.Bool(m, "is_in_european_union"),
		ISOCode:           raw.String(m, "iso_code"),
	}
}

func (c Country) ToMap() map[string]any {
	d := raw.Dict{}
	c.fill(d)
	return d
}

func (c Country) fill(d raw.Dict) {
	d.Int("confidence", c.Confidence)
	d.Uint("geoname_id", c.GeoNameID)
	d.Bool("is_in_european_union", c.IsInEuropeanUnion)
	d.String("iso_code", c.ISOCode)
	d.Names("names", c.Names)
}

func (c Country) Equal(o Country) bool { return raw.Equal(c.ToMap(), o.ToMap()) }

// RepresentedCountry is the country represented by the users of an IP address when it
// differs from the country they are in, e.g. an overseas military base.
type RepresentedCountry struct {
	Country
	// Type of the representing entity. Currently only "military".
	Type *string
}

func NewRepresentedCountry(locales []string, m map[string]any) RepresentedCountry {
	return RepresentedCountry{
		Country: NewCountry(locales, m),
		Type:    raw.String(m, "type"),
	}
}

func (c RepresentedCountry) ToMap() map[string]any {
	d := raw.Dict{}
	c.fill(d)
	d.String("type", c.Type)
	return d
}

func (c RepresentedCountry) Equal(o RepresentedCountry) bool {
	return raw.Equal(c.ToMap(), o.ToMap())
}

// Subdivision is a region of a country, e.g. a state or a county.
type Subdivision struct {
	Place
	Confidence *int
	GeoNameID  *uint
	// ISOCode is the subdivision part of the ISO 3166-2 code, up to three characters.
	ISOCode *string
}

func NewSubdivision(locales []string, m map[string]any) Subdivision {
	return Subdivision{
		Place:      newPlace(locales, m),
		Confidence: raw.Int(m, "confidence"),
		GeoNameID:  raw.Uint(m, "geoname_id"),
		ISOCode:    raw.String(m, "iso_code"),
	}
}

func (s Subdivision) ToMap() map[string]any {
	d := raw.Dict{}
	d.Int("confidence", s.Confidence)
	d.Uint("geoname_id", s.GeoNameID)
	d.String("iso_code", s.ISOCode)
	d.Names("names", s.Names)
	return d
}

func (s Subdivision) Equal(o Subdivision) bool { return raw.Equal(s.ToMap(), o.ToMap()) }

// Subdivisions are ordered from the largest to the smallest region. For Oxford the first
// element is England and the second Oxfordshire.
type Subdivisions []Subdivision

func NewSubdivisions(locales []string, list []map[string]any) Subdivisions {
	subs := make(Subdivisions, 0, len(list))
	for _, m := range list {
		subs = append(subs, NewSubdivision(locales, m))
	}
	return subs
}

// MostSpecific returns the smallest subdivision, or an empty one if there are none.
func (s Subdivisions) MostSpecific() Subdivision {
	if len(s) == 0 {
		return Subdivision{}
	}
	return s[len(s)-1]
}

// ToMaps returns the plain-data projection of every subdivision.
func (s Subdivisions) ToMaps() []map[string]any {
	out := make([]map[string]any, 0, len(s))
	for _, sub := range s {
		out = append(out, sub.ToMap())
	}
	return out
}
