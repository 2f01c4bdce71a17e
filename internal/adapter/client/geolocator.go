package client

import (
	"context"
	"fmt"
	"net"

	"customs-gateway/internal/domain/entity"

	"github.com/oschwald/geoip2-golang"
)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// MaxMindGeolocator resolves coordinates from a local GeoLite2-City database.
type MaxMindGeolocator struct {
	reader cityReader
}

func NewMaxMindGeolocator(dbPath string) (*MaxMindGeolocator, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", dbPath, err)
	}
	return &MaxMindGeolocator{reader: reader}, nil
}

func (g *MaxMindGeolocator) Locate(_ context.Context, ip string) (entity.Coordinates, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return entity.Coordinates{}, fmt.Errorf("%w: invalid ip %q", entity.ErrGeolocationUnavailable, ip)
	}
	rec, err := g.reader.City(parsed)
	if err != nil {
		return entity.Coordinates{}, fmt.Errorf("%w: %w", entity.ErrGeolocationUnavailable, err)
	}
	// The database reports 0,0 for addresses it has no location for.
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return entity.Coordinates{}, fmt.Errorf("%w: no location for %s", entity.ErrGeolocationUnavailable, ip)
	}
	return entity.Coordinates{
		Latitude:  rec.Location.Latitude,
		Longitude: rec.Location.Longitude,
	}, nil
}

func (g *MaxMindGeolocator) Close() error {
	return g.reader.Close()
}
