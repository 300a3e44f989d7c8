package geolookup

import (
	"strings"
)

const (
	displaySeparator = ", "
	searchSeparator  = " "
)

// Resolve builds the ancestor-to-self path of rec using the names stored in
// reg. Each ancestor level the record refers to contributes one fragment,
// except the level matching the record's own kind; the record's own name is
// always last. Unknown ancestors contribute an empty fragment.
//
// With forSearch the fragments are lowercased and joined with a single space,
// otherwise they keep their case and are joined with ", ".
func Resolve(rec Record, reg *Registry, forSearch bool) string {
	country, admin1, admin2 := rec.codes()
	cn, a1n, a2n := reg.names(country, admin1, admin2)
	kind := rec.Kind()

	path := make([]string, 0, 4)
	if country != "" && kind != KindCountry {
		path = append(path, cn)
	}
	if admin1 != "" && kind != KindAdmin1 {
		path = append(path, a1n)
	}
	if admin2 != "" && kind != KindAdmin2 {
		path = append(path, a2n)
	}
	path = append(path, rec.DisplayName())

	if forSearch {
		for i := range path {
			path[i] = strings.ToLower(path[i])
		}
		return strings.Join(path, searchSeparator)
	}
	return strings.Join(path, displaySeparator)
}

// DisplayPath is the human readable path of rec, e.g. "United States, Illinois, Springfield".
func DisplayPath(rec Record, reg *Registry) string {
	return Resolve(rec, reg, false)
}

// SearchKey is the normalized key of rec, e.g. "united states illinois springfield".
func SearchKey(rec Record, reg *Registry) string {
	return Resolve(rec, reg, true)
}
