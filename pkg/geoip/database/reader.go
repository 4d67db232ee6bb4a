// Package database reads GeoIP2 and GeoLite2 MMDB files and returns typed models.
package database

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/models"
	"github.com/TomasB/geolookup/pkg/geoip/records"
)

// engine is the part of maxminddb.Reader the Reader depends on.
type engine interface {
	LookupNetwork(ip net.IP, result any) (*net.IPNet, bool, error)
	Close() error
}

// Option configures a Reader.
type Option func(*Reader)

// WithLocales sets the locale preference of the returned models. The default is ["en"].
func WithLocales(locales []string) Option {
	return func(r *Reader) { r.locales = records.Locales(locales) }
}

// WithLogger sets the logger used for debug output. Nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reader looks up addresses in an MMDB database. It is safe for concurrent use.
type Reader struct {
	db       engine
	metadata maxminddb.Metadata
	locales  []string
	logger   *slog.Logger
}

// Open memory-maps the database at path.
func Open(path string, opts ...Option) (*Reader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MMDB file: %w", err)
	}
	return newReader(db, db.Metadata, opts), nil
}

// FromBytes reads the database from an in-memory buffer. The buffer must not be modified
// while the Reader is in use.
func FromBytes(b []byte, opts ...Option) (*Reader, error) {
	db, err := maxminddb.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to read MMDB data: %w", err)
	}
	return newReader(db, db.Metadata, opts), nil
}

// OpenFile reads the whole database from an already open file. The file can be closed once
// OpenFile returns.
func OpenFile(f *os.File, opts ...Option) (*Reader, error) {
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read MMDB file %s: %w", f.Name(), err)
	}
	return FromBytes(b, opts...)
}

func newReader(db engine, metadata maxminddb.Metadata, opts []Option) *Reader {
	r := &Reader{
		db:       db,
		metadata: metadata,
		locales:  records.Locales(nil),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger.Debug("MMDB database opened",
		"database_type", metadata.DatabaseType,
		"build_time", time.Unix(int64(metadata.BuildEpoch), 0).UTC(),
		"ip_version", metadata.IPVersion,
	)
	return r
}

// Metadata returns the metadata section of the database.
func (r *Reader) Metadata() maxminddb.Metadata { return r.metadata }

// Locales returns the locale preference of the returned models.
func (r *Reader) Locales() []string { return records.Locales(r.locales) }

// Close releases the database. Models already returned stay valid.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Country looks up ip in a GeoIP2 or GeoLite2 Country database.
func (r *Reader) Country(ip string) (*models.Country, error) {
	return lookup(r, KindCountry, ip, models.NewCountry)
}

// City looks up ip in a GeoIP2 or GeoLite2 City database.
func (r *Reader) City(ip string) (*models.City, error) {
	return lookup(r, KindCity, ip, models.NewCity)
}

// AnonymousIP looks up ip in a GeoIP2 Anonymous IP database.
func (r *Reader) AnonymousIP(ip string) (*models.AnonymousIP, error) {
	return lookup(r, KindAnonymousIP, ip, models.NewAnonymousIP)
}

// AnonymousPlus looks up ip in a GeoIP Anonymous Plus database.
func (r *Reader) AnonymousPlus(ip string) (*models.AnonymousPlus, error) {
	return lookup(r, KindAnonymousPlus, ip, models.NewAnonymousPlus)
}

// ASN looks up ip in a GeoLite2 ASN database.
func (r *Reader) ASN(ip string) (*models.ASN, error) {
	return lookup(r, KindASN, ip, models.NewASN)
}

// ConnectionType looks up ip in a GeoIP2 Connection-Type database.
func (r *Reader) ConnectionType(ip string) (*models.ConnectionType, error) {
	return lookup(r, KindConnectionType, ip, models.NewConnectionType)
}

// Domain looks up ip in a GeoIP2 Domain database.
func (r *Reader) Domain(ip string) (*models.Domain, error) {
	return lookup(r, KindDomain, ip, models.NewDomain)
}

// Enterprise looks up ip in a GeoIP2 Enterprise database.
func (r *Reader) Enterprise(ip string) (*models.Enterprise, error) {
	return lookup(r, KindEnterprise, ip, models.NewEnterprise)
}

// ISP looks up ip in a GeoIP2 ISP database.
func (r *Reader) ISP(ip string) (*models.ISP, error) {
	return lookup(r, KindISP, ip, models.NewISP)
}

// Lookup dispatches to the method named by kind.
func (r *Reader) Lookup(kind Kind, ip string) (models.Model, error) {
	switch kind {
	case KindCountry:
		return r.Country(ip)
	case KindCity:
		return r.City(ip)
	case KindAnonymousIP:
		return r.AnonymousIP(ip)
	case KindAnonymousPlus:
		return r.AnonymousPlus(ip)
	case KindASN:
		return r.ASN(ip)
	case KindConnectionType:
		return r.ConnectionType(ip)
	case KindDomain:
		return r.Domain(ip)
	case KindEnterprise:
		return r.Enterprise(ip)
	case KindISP:
		return r.ISP(ip)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func lookup[T models.Model](
	r *Reader,
	kind Kind,
	ip string,
	build func(map[string]any, ...models.Option) (T, error),
) (T, error) {
	var zero T

	if !strings.Contains(r.metadata.DatabaseType, databaseTypes[kind]) {
		return zero, &geoip.DatabaseTypeError{Method: kind.String(), DatabaseType: r.metadata.DatabaseType}
	}

	addr, err := geoip.ParseAddress(ip)
	if err != nil {
		return zero, err
	}
	// IPv4-mapped addresses are looked up in the IPv4 tree and get an IPv4 prefix length.
	addr = addr.Unmap()

	var record map[string]any
	network, ok, err := r.db.LookupNetwork(net.IP(addr.AsSlice()), &record)
	if err != nil {
		return zero, fmt.Errorf("%s lookup failed: %w", kind, err)
	}

	prefixLen := -1
	if network != nil {
		prefixLen, _ = network.Mask.Size()
	}

	if !ok {
		r.logger.Debug("address not found", "kind", kind, "ip", addr, "prefix_len", prefixLen)
		return zero, geoip.NewAddressNotFoundError(addr.String(), prefixLen)
	}

	return build(record,
		models.WithLocales(r.locales),
		models.WithIPAddress(addr.String()),
		models.WithPrefixLen(prefixLen),
	)
}
