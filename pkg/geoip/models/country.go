package models

import (
	"github.com/TomasB/geolookup/internal/raw"
	"github.com/TomasB/geolookup/pkg/geoip/records"
)

// Country is the response of the GeoIP2 Country database and web service endpoint.
type Country struct {
	// Continent is the continent associated with the address.
	Continent records.Continent
	// Country is the country in which the address is located.
	Country records.Country
	// MaxMind holds account information returned by the web service.
	MaxMind records.MaxMind
	// RegisteredCountry is the country the ISP registered the address block in.
	RegisteredCountry records.Country
	// RepresentedCountry is the country represented by users of the address, e.g. a
	// military base abroad.
	RepresentedCountry records.RepresentedCountry
	// Traits holds the remaining data about the address.
	Traits records.Traits
	// Locales is the locale preference the names were resolved with.
	Locales []string
}

// NewCountry builds a Country from a raw record.
func NewCountry(m map[string]any, opts ...Option) (*Country, error) {
	o := newOptions(m, opts)
	g, err := parseGeo(m, o, 0)
	if err != nil {
		return nil, err
	}
	c := &Country{Locales: o.locales}
	c.set(g)
	return c, nil
}

func (c *Country) set(g geoFields) {
	c.Continent = g.continent
	c.Country = g.country
	c.MaxMind = g.maxmind
	c.RegisteredCountry = g.registeredCountry
	c.RepresentedCountry = g.representedCountry
	c.Traits = g.traits
}

func (c *Country) fields() geoFields {
	return geoFields{
		continent:          c.Continent,
		country:            c.Country,
		maxmind:            c.MaxMind,
		registeredCountry:  c.RegisteredCountry,
		representedCountry: c.RepresentedCountry,
		traits:             c.Traits,
	}
}

// ToMap implements Model.
func (c *Country) ToMap() map[string]any { return c.fields().toMap(0) }

// Equal reports whether both responses have the same plain-data projection.
func (c *Country) Equal(o *Country) bool {
	if c == nil || o == nil {
		return c == o
	}
	return raw.Equal(c.ToMap(), o.ToMap())
}

func (c *Country) String() string { return describe("Country", c.ToMap()) }
