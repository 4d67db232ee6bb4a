package models

import (
	"github.com/TomasB/geolookup/internal/raw"
	"github.com/TomasB/geolookup/pkg/geoip/records"
)

// City is the response of the GeoIP2 City database and web service endpoint. It has every
// Country field plus city level data.
type City struct {
	Continent          records.Continent
	Country            records.Country
	MaxMind            records.MaxMind
	RegisteredCountry  records.Country
	RepresentedCountry records.RepresentedCountry
	Traits             records.Traits

	// City is the city in which the address is located.
	City records.City
	// Location holds the approximate coordinates and time zone.
	Location records.Location
	// Postal is the postal code of the location.
	Postal records.Postal
	// Subdivisions is ordered from the largest subdivision to the smallest.
	Subdivisions records.Subdivisions

	Locales []string
}

// NewCity builds a City from a raw record.
func NewCity(m map[string]any, opts ...Option) (*City, error) {
	o := newOptions(m, opts)
	g, err := parseGeo(m, o, cityGroup)
	if err != nil {
		return nil, err
	}
	c := &City{Locales: o.locales}
	c.set(g)
	return c, nil
}

func (c *City) set(g geoFields) {
	c.Continent = g.continent
	c.Country = g.country
	c.MaxMind = g.maxmind
	c.RegisteredCountry = g.registeredCountry
	c.RepresentedCountry = g.representedCountry
	c.Traits = g.traits
	c.City = g.city
	c.Location = g.location
	c.Postal = g.postal
	c.Subdivisions = g.subdivisions
}

func (c *City) fields() geoFields {
	return geoFields{
		continent:          c.Continent,
		country:            c.Country,
		maxmind:            c.MaxMind,
		registeredCountry:  c.RegisteredCountry,
		representedCountry: c.RepresentedCountry,
		traits:             c.Traits,
		city:               c.City,
		location:           c.Location,
		postal:             c.Postal,
		subdivisions:       c.Subdivisions,
	}
}

// ToMap implements Model.
func (c *City) ToMap() map[string]any { return c.fields().toMap(cityGroup) }

// Equal reports whether both responses have the same plain-data projection.
func (c *City) Equal(o *City) bool {
	if c == nil || o == nil {
		return c == o
	}
	return raw.Equal(c.ToMap(), o.ToMap())
}

func (c *City) String() string { return describe("City", c.ToMap()) }

// Insights is the response of the GeoIP2 Insights web service endpoint. It has every City
// field plus anonymizer data.
type Insights struct {
	Continent          records.Continent
	Country            records.Country
	MaxMind            records.MaxMind
	RegisteredCountry  records.Country
	RepresentedCountry records.RepresentedCountry
	Traits             records.Traits
	City               records.City
	Location           records.Location
	Postal             records.Postal
	Subdivisions       records.Subdivisions

	// Anonymizer holds the anonymous network data of the address.
	Anonymizer records.Anonymizer

	Locales []string
}

// NewInsights builds an Insights response from a raw record.
func NewInsights(m map[string]any, opts ...Option) (*Insights, error) {
	o := newOptions(m, opts)
	g, err := parseGeo(m, o, cityGroup|anonymizerGroup)
	if err != nil {
		return nil, err
	}
	var c City
	c.set(g)
	return &Insights{
		Continent:          c.Continent,
		Country:            c.Country,
		MaxMind:            c.MaxMind,
		RegisteredCountry:  c.RegisteredCountry,
		RepresentedCountry: c.RepresentedCountry,
		Traits:             c.Traits,
		City:               c.City,
		Location:           c.Location,
		Postal:             c.Postal,
		Subdivisions:       c.Subdivisions,
		Anonymizer:         g.anonymizer,
		Locales:            o.locales,
	}, nil
}

// ToMap implements Model.
func (i *Insights) ToMap() map[string]any {
	return geoFields{
		continent:          i.Continent,
		country:            i.Country,
		maxmind:            i.MaxMind,
		registeredCountry:  i.RegisteredCountry,
		representedCountry: i.RepresentedCountry,
		traits:             i.Traits,
		city:               i.City,
		location:           i.Location,
		postal:             i.Postal,
		subdivisions:       i.Subdivisions,
		anonymizer:         i.Anonymizer,
	}.toMap(cityGroup | anonymizerGroup)
}

// Equal reports whether both responses have the same plain-data projection.
func (i *Insights) Equal(o *Insights) bool {
	if i == nil || o == nil {
		return i == o
	}
	return raw.Equal(i.ToMap(), o.ToMap())
}

func (i *Insights) String() string { return describe("Insights", i.ToMap()) }

// Enterprise is the response of the GeoIP2 Enterprise database. It has the City fields;
// the Enterprise data itself lives in the confidence values and the extra traits.
type Enterprise struct {
	Continent          records.Continent
	Country            records.Country
	MaxMind            records.MaxMind
	RegisteredCountry  records.Country
	RepresentedCountry records.RepresentedCountry
	Traits             records.Traits
	City               records.City
	Location           records.Location
	Postal             records.Postal
	Subdivisions       records.Subdivisions

	Locales []string
}

// NewEnterprise builds an Enterprise response from a raw record.
func NewEnterprise(m map[string]any, opts ...Option) (*Enterprise, error) {
	c, err := NewCity(m, opts...)
	if err != nil {
		return nil, err
	}
	e := Enterprise(*c)
	return &e, nil
}

// ToMap implements Model.
func (e *Enterprise) ToMap() map[string]any { return (*City)(e).ToMap() }

// Equal reports whether both responses have the same plain-data projection.
func (e *Enterprise) Equal(o *Enterprise) bool {
	if e == nil || o == nil {
		return e == o
	}
	return raw.Equal(e.ToMap(), o.ToMap())
}

func (e *Enterprise) String() string { return describe("Enterprise", e.ToMap()) }
