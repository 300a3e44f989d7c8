package geolookup

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// discardLogger keeps test output quiet.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// countryLine builds a 19-column countryInfo.txt row.
func countryLine(iso, iso3, name string) string {
	return strings.Join([]string{
		iso, iso3, "840", iso, name, "Capital", "1000", "327167434", "NA", ".us",
		"USD", "Dollar", "1", "#####-####", "^\\d{5}$", "en-US", "6252001", "CA,MX", "",
	}, "\t")
}

// cityLine builds a 19-column cities dump row.
func cityLine(id, name, lat, lng, cc, admin1, admin2 string) string {
	return strings.Join([]string{
		id, name, name, "", lat, lng, "P", "PPL", cc, "", admin1, admin2, "", "",
		"116250", "", "180", "America/Chicago", "2019-09-05",
	}, "\t")
}

var fixtureCountries = []string{
	"# GeoNames country info",
	"#ISO\tISO3\tISO-Numeric\tfips\tCountry",
	countryLine("US", "USA", "United States"),
	countryLine("FR", "FRA", "France"),
}

var fixtureAdmin1 = []string{
	"US.IL\tIllinois\tIllinois\t4896861",
	"US.MA\tMassachusetts\tMassachusetts\t6254926",
	"FR.11\tÎle-de-France\tIle-de-France\t3012874",
	"not-a-code\tBroken",
}

var fixtureAdmin2 = []string{
	"US.IL.167\tSangamon County\tSangamon County\t4250542",
	"FR.11.75\tParis\tParis\t2968815",
	"",
}

var fixtureCities = []string{
	cityLine("4250542", "Springfield", "39.80172", "-89.64371", "US", "IL", "167"),
	cityLine("4951788", "Springfield", "42.10148", "-72.58981", "US", "MA", "013"),
	cityLine("2988507", "Paris", "48.85341", "2.3488", "FR", "11", "75"),
	cityLine("4887398", "Chicago", "41.85003", "-87.65005", "US", "IL", ""),
	cityLine("9999999", "Ghosttown", "40.0", "-100.0", "US", "ZZ", ""),
	cityLine("9999998", "", "40.0", "-100.0", "US", "IL", ""),
	"truncated\tline",
	cityLine("9999997", "Nowhere", "not-a-lat", "0", "US", "IL", ""),
}

// fixtureOrder is the expected index order for the fixture data.
var fixtureOrder = []string{
	"United States",
	"France",
	"United States, Illinois",
	"United States, Massachusetts",
	"France, Île-de-France",
	"United States, Illinois, Sangamon County",
	"France, Île-de-France, Paris",
	"United States, Illinois, Sangamon County, Springfield",
	"United States, Massachusetts, , Springfield",
	"France, Île-de-France, Paris, Paris",
	"United States, Illinois, Chicago",
	"United States, , Ghosttown",
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// writeZip writes lines into a single-entry zip archive.
func writeZip(path, entry string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(entry)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// writeFixtures lays out the default source files in dir.
func writeFixtures(dir string) error {
	if err := writeLines(filepath.Join(dir, "countryInfo.txt"), fixtureCountries); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, "admin1CodesASCII.txt"), fixtureAdmin1); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, "admin2Codes.txt"), fixtureAdmin2); err != nil {
		return err
	}
	return writeZip(filepath.Join(dir, "cities1000.zip"), "cities1000.txt", fixtureCities)
}

// fixtureOptions builds from dir without touching the network.
func fixtureOptions(dir string) []Option {
	return []Option{WithDataDir(dir), WithDownload(false), WithLogger(discardLogger)}
}

// buildFixtureRegistry registers the fixture definitions and seals the registry.
func buildFixtureRegistry() *Registry {
	reg := NewRegistry()
	reg.SetCountryName("US", "United States")
	reg.SetCountryName("FR", "France")
	reg.SetAdmin1Name("US", "IL", "Illinois")
	reg.SetAdmin1Name("US", "MA", "Massachusetts")
	reg.SetAdmin1Name("FR", "11", "Île-de-France")
	reg.SetAdmin2Name("US", "IL", "167", "Sangamon County")
	reg.SetAdmin2Name("FR", "11", "75", "Paris")
	reg.Seal()
	return reg
}

func displayPaths(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Path
	}
	return out
}
