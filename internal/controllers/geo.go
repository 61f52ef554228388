package controllers

import (
	"encoding/binary"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// pointWKB encodes a longitude/latitude pair for CustomerInfo.Location.
func pointWKB(lng, lat float64) ([]byte, error) {
	p, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{lng, lat})
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(p.SetSRID(4326), binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
