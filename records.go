package geolookup

import (
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// Kind identifies the administrative level of a record.
type Kind string

const (
	KindCountry Kind = "country"
	KindAdmin1  Kind = "admin1"
	KindAdmin2  Kind = "admin2"
	KindCity    Kind = "city"
)

// s2CellLevel is the granularity of the cell token attached to each city.
// Level 10 is roughly 10km x 10km at the equator.
const s2CellLevel = 10

// Record is one decoded line of source data. The concrete type is one of
// CountryRecord, Admin1Record, Admin2Record or CityRecord.
type Record interface {
	Kind() Kind
	// DisplayName is the record's own name, used as the last path fragment.
	DisplayName() string
	// codes returns the country, admin1 and admin2 codes the record refers to.
	// Levels that do not apply are empty.
	codes() (country, admin1, admin2 string)
}

// CountryRecord is a row of countryInfo.txt.
type CountryRecord struct {
	ISO        string `json:"iso"`
	ISO3       string `json:"iso3"`
	Name       string `json:"name"`
	Capital    string `json:"capital,omitempty"`
	Continent  string `json:"continent,omitempty"`
	Population int64  `json:"population,omitempty"`
	GeonameID  int64  `json:"geonameId,omitempty"`
}

func (r CountryRecord) Kind() Kind          { return KindCountry }
func (r CountryRecord) DisplayName() string { return r.Name }
func (r CountryRecord) codes() (string, string, string) {
	return r.ISO, "", ""
}

// Admin1Record is a first-level administrative division (state, province).
type Admin1Record struct {
	CountryCode string `json:"countryCode"`
	Admin1Code  string `json:"admin1Code"`
	Name        string `json:"name"`
	ASCIIName   string `json:"asciiName,omitempty"`
	GeonameID   int64  `json:"geonameId,omitempty"`
}

func (r Admin1Record) Kind() Kind          { return KindAdmin1 }
func (r Admin1Record) DisplayName() string { return r.Name }
func (r Admin1Record) codes() (string, string, string) {
	return r.CountryCode, r.Admin1Code, ""
}

// Admin2Record is a second-level administrative division (county, district).
type Admin2Record struct {
	CountryCode string `json:"countryCode"`
	Admin1Code  string `json:"admin1Code"`
	Admin2Code  string `json:"admin2Code"`
	Name        string `json:"name"`
	ASCIIName   string `json:"asciiName,omitempty"`
	GeonameID   int64  `json:"geonameId,omitempty"`
}

func (r Admin2Record) Kind() Kind          { return KindAdmin2 }
func (r Admin2Record) DisplayName() string { return r.Name }
func (r Admin2Record) codes() (string, string, string) {
	return r.CountryCode, r.Admin1Code, r.Admin2Code
}

// CityRecord is a populated place from the cities dump.
type CityRecord struct {
	GeonameID   int64   `json:"geonameId"`
	Name        string  `json:"name"`
	ASCIIName   string  `json:"asciiName,omitempty"`
	CountryCode string  `json:"countryCode"`
	Admin1Code  string  `json:"admin1Code,omitempty"`
	Admin2Code  string  `json:"admin2Code,omitempty"`
	Admin3Code  string  `json:"admin3Code,omitempty"`
	Admin4Code  string  `json:"admin4Code,omitempty"`
	FeatureCode string  `json:"featureCode,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Population  int64   `json:"population,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Geohash     string  `json:"geohash"`
	Cell        string  `json:"cell"`
}

func (r CityRecord) Kind() Kind          { return KindCity }
func (r CityRecord) DisplayName() string { return r.Name }
func (r CityRecord) codes() (string, string, string) {
	return r.CountryCode, r.Admin1Code, r.Admin2Code
}

// Decoder turns one raw line into a Record. It reports false for blank,
// comment or malformed lines, which the caller skips.
type Decoder func(line string) (Record, bool)

// DecodeCountry parses a countryInfo.txt line.
// Format: ISO<tab>ISO3<tab>ISO-Numeric<tab>fips<tab>Country<tab>Capital<tab>Area<tab>Population<tab>Continent ... geonameid ...
func DecodeCountry(line string) (Record, bool) {
	if len(line) == 0 || line[0] == '#' {
		return nil, false
	}
	fields := strings.SplitN(line, "\t", 19)
	if len(fields) != 19 || fields[0] == "" || fields[0] == "0" {
		return nil, false
	}
	pop, _ := strconv.ParseInt(fields[7], 10, 64)
	gid, _ := strconv.ParseInt(fields[16], 10, 64)
	return CountryRecord{
		ISO:        fields[0],
		ISO3:       fields[1],
		Name:       strings.TrimSpace(fields[4]),
		Capital:    fields[5],
		Continent:  fields[8],
		Population: pop,
		GeonameID:  gid,
	}, true
}

// DecodeAdmin1 parses an admin1CodesASCII.txt line.
// Format: CC.CODE<tab>Name<tab>AsciiName<tab>GeonameId
func DecodeAdmin1(line string) (Record, bool) {
	if line == "" || line[0] == '#' {
		return nil, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return nil, false
	}
	parts := strings.SplitN(fields[0], ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, false
	}
	r := Admin1Record{
		CountryCode: parts[0],
		Admin1Code:  parts[1],
		Name:        strings.TrimSpace(fields[1]),
	}
	if len(fields) > 2 {
		r.ASCIIName = fields[2]
	}
	if len(fields) > 3 {
		r.GeonameID, _ = strconv.ParseInt(fields[3], 10, 64)
	}
	return r, true
}

// DecodeAdmin2 parses an admin2Codes.txt line.
// Format: CC.A1.A2<tab>Name<tab>AsciiName<tab>GeonameId
func DecodeAdmin2(line string) (Record, bool) {
	if line == "" || line[0] == '#' {
		return nil, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return nil, false
	}
	parts := strings.SplitN(fields[0], ".", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, false
	}
	r := Admin2Record{
		CountryCode: parts[0],
		Admin1Code:  parts[1],
		Admin2Code:  parts[2],
		Name:        strings.TrimSpace(fields[1]),
	}
	if len(fields) > 2 {
		r.ASCIIName = fields[2]
	}
	if len(fields) > 3 {
		r.GeonameID, _ = strconv.ParseInt(fields[3], 10, 64)
	}
	return r, true
}

// DecodeCity parses a line of the geonames cities dump (19 columns).
func DecodeCity(line string) (Record, bool) {
	fields := strings.SplitN(line, "\t", 19)
	if len(fields) != 19 {
		return nil, false
	}

	// Skip rows with unparseable coordinates rather than placing them at (0,0).
	lat, errLat := strconv.ParseFloat(fields[4], 64)
	lng, errLng := strconv.ParseFloat(fields[5], 64)
	if errLat != nil || errLng != nil {
		return nil, false
	}
	gid, _ := strconv.ParseInt(fields[0], 10, 64)
	pop, _ := strconv.ParseInt(fields[14], 10, 64)

	return CityRecord{
		GeonameID:   gid,
		Name:        strings.Trim(fields[1], " "),
		ASCIIName:   fields[2],
		FeatureCode: fields[7],
		CountryCode: fields[8],
		Admin1Code:  fields[10],
		Admin2Code:  fields[11],
		Admin3Code:  fields[12],
		Admin4Code:  fields[13],
		Latitude:    lat,
		Longitude:   lng,
		Population:  pop,
		Timezone:    fields[17],
		Geohash:     geohash.Encode(lat, lng),
		Cell:        cellToken(lat, lng),
	}, true
}

// cellToken returns the s2 cell token containing the given point.
func cellToken(lat, lng float64) string {
	ll := s2.LatLngFromDegrees(lat, lng)
	return s2.CellIDFromLatLng(ll).Parent(s2CellLevel).ToToken()
}
