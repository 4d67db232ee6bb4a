package models

import (
	"github.com/TomasB/geolookup/internal/raw"
	"github.com/TomasB/geolookup/pkg/geoip/records"
)

type group uint8

const (
	cityGroup group = 1 << iota
	anonymizerGroup
)

// geoFields is the union of the fields of the location models. Which groups are read and
// written depends on the model.
type geoFields struct {
	continent          records.Continent
	country            records.Country
	maxmind            records.MaxMind
	registeredCountry  records.Country
	representedCountry records.RepresentedCountry
	traits             records.Traits

	city         records.City
	location     records.Location
	postal       records.Postal
	subdivisions records.Subdivisions

	anonymizer records.Anonymizer
}

func parseGeo(m map[string]any, o options, groups group) (geoFields, error) {
	traits, err := records.NewTraits(raw.Map(m, "traits"), o.ipAddress, o.prefixLen)
	if err != nil {
		return geoFields{}, err
	}

	g := geoFields{
		continent:          records.NewContinent(o.locales, raw.Map(m, "continent")),
		country:            records.NewCountry(o.locales, raw.Map(m, "country")),
		maxmind:            records.NewMaxMind(raw.Map(m, "maxmind")),
		registeredCountry:  records.NewCountry(o.locales, raw.Map(m, "registered_country")),
		representedCountry: records.NewRepresentedCountry(o.locales, raw.Map(m, "represented_country")),
		traits:             traits,
	}

	if groups&cityGroup != 0 {
		g.city = records.NewCity(o.locales, raw.Map(m, "city"))
		g.location = records.NewLocation(raw.Map(m, "location"))
		g.postal = records.NewPostal(raw.Map(m, "postal"))
		g.subdivisions = records.NewSubdivisions(o.locales, raw.Maps(m, "subdivisions"))
	}

	if groups&anonymizerGroup != 0 {
		if g.anonymizer, err = records.NewAnonymizer(raw.Map(m, "anonymizer")); err != nil {
			return geoFields{}, err
		}
	}

	return g, nil
}

func (g geoFields) toMap(groups group) map[string]any {
	d := raw.Dict{}
	d.Map("continent", g.continent.ToMap())
	d.Map("country", g.country.ToMap())
	d.Map("maxmind", g.maxmind.ToMap())
	d.Map("registered_country", g.registeredCountry.ToMap())
	d.Map("represented_country", g.representedCountry.ToMap())
	d.Map("traits", g.traits.ToMap())

	if groups&cityGroup != 0 {
		d.Map("city", g.city.ToMap())
		d.Map("location", g.location.ToMap())
		d.Map("postal", g.postal.ToMap())
		d.List("subdivisions", g.subdivisions.ToMaps())
	}

	if groups&anonymizerGroup != 0 {
		d.Map("anonymizer", g.anonymizer.ToMap())
	}

	return d
}
