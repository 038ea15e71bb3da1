// Package geoip defines the geolocation lookup boundary (spec §1
// non-goals: "geolocation database lookup" is explicitly out of scope for
// this system's core). The Session holds a Lookup (the no-op one when -G
// is given); nothing in the core calls it, and the host analyzer does not
// consult it. The default implementation is a no-op so the core never
// depends on a MaxMind database being present.
package geoip

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is the subset of a GeoIP City lookup this system displays.
type Location struct {
	Country string
	City    string
}

// Lookup resolves an IP address to a Location. Implementations must be
// safe for concurrent use; the host analyzer may call Lookup from the
// event-loop thread only, but a future implementation spanning workers
// should not assume that.
type Lookup interface {
	Lookup(ip net.IP) (Location, bool)
}

// Noop is the default Lookup: every query misses. Selected when -G is
// given, or when no database path is configured.
type Noop struct{}

// Lookup implements Lookup.
func (Noop) Lookup(net.IP) (Location, bool) { return Location{}, false }

// MaxMindDB is a Lookup backed by a MaxMind GeoLite2/GeoIP2 City database,
// grounded on how netscope (among the retrieved examples) wires
// geoip2-golang behind its own lookup boundary.
type MaxMindDB struct {
	reader *geoip2.Reader
}

// OpenMaxMindDB opens the MaxMind database at path.
func OpenMaxMindDB(path string) (*MaxMindDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMindDB{reader: r}, nil
}

// Lookup implements Lookup.
func (m *MaxMindDB) Lookup(ip net.IP) (Location, bool) {
	city, err := m.reader.City(ip)
	if err != nil || city == nil {
		return Location{}, false
	}
	name := city.City.Names["en"]
	country := city.Country.Names["en"]
	if name == "" && country == "" {
		return Location{}, false
	}
	return Location{Country: country, City: name}, true
}

// Close releases the underlying database file.
func (m *MaxMindDB) Close() error {
	return m.reader.Close()
}
