package data

import (
	"github.com/oschwald/maxminddb-golang"

	"github.com/TomasB/geolookup/pkg/geoip/database"
	"github.com/TomasB/geolookup/pkg/geoip/models"
)

// GeoLookup defines the interface the handlers use to query the database.
type GeoLookup interface {
	// Lookup returns the model of the given kind for the IP address.
	// Errors are those of database.Reader.
	Lookup(kind database.Kind, ip string) (models.Model, error)

	// Metadata returns the metadata of the loaded database.
	Metadata() maxminddb.Metadata

	// Close releases any resources held by the lookup implementation.
	Close() error
}
