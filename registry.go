package geolookup

import (
	"sync"
)

// Node is one level of the administrative hierarchy. Its name stays empty
// until the defining record for its code has been registered; only the
// registry's Set*Name methods write it.
type Node struct {
	mu       *sync.RWMutex // the owning registry's lock
	name     string
	children map[string]*Node
}

func newNode(mu *sync.RWMutex) *Node {
	return &Node{mu: mu, children: make(map[string]*Node)}
}

// Name returns the node's display name.
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// child returns the child for code, creating an empty one if absent.
// The caller holds the write lock.
func (n *Node) child(code string) *Node {
	c, ok := n.children[code]
	if !ok {
		c = newNode(n.mu)
		n.children[code] = c
	}
	return c
}

// Registry maps country code -> admin1 code -> admin2 code to display names.
// Nodes are created lazily on first reference, so descendants may arrive
// before their ancestors. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	countries map[string]*Node
	sealed    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{countries: make(map[string]*Node)}
}

func (r *Registry) ensureCountry(code string) *Node {
	n, ok := r.countries[code]
	if !ok {
		n = newNode(&r.mu)
		r.countries[code] = n
	}
	return n
}

// EnsureCountry returns the node for code, creating an empty one if absent.
func (r *Registry) EnsureCountry(code string) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureCountry(code)
}

// SetCountryName sets the display name of a country.
func (r *Registry) SetCountryName(code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCountry(code).name = name
}

// EnsureAdmin1 returns the admin1 node under countryCode, creating the path if absent.
func (r *Registry) EnsureAdmin1(countryCode, admin1Code string) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureCountry(countryCode).child(admin1Code)
}

// SetAdmin1Name sets the display name of an admin1 division.
func (r *Registry) SetAdmin1Name(countryCode, admin1Code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCountry(countryCode).child(admin1Code).name = name
}

// EnsureAdmin2 returns the admin2 node, creating the path if absent.
func (r *Registry) EnsureAdmin2(countryCode, admin1Code, admin2Code string) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureCountry(countryCode).child(admin1Code).child(admin2Code)
}

// SetAdmin2Name sets the display name of an admin2 division.
func (r *Registry) SetAdmin2Name(countryCode, admin1Code, admin2Code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCountry(countryCode).child(admin1Code).child(admin2Code).name = name
}

// Register stores the name of a definitional record (country, admin1 or
// admin2). Cities and empty names are ignored. It reports whether the record
// was stored.
func (r *Registry) Register(rec Record) bool {
	if rec.DisplayName() == "" {
		return false
	}
	switch v := rec.(type) {
	case CountryRecord:
		r.SetCountryName(v.ISO, v.Name)
	case Admin1Record:
		r.SetAdmin1Name(v.CountryCode, v.Admin1Code, v.Name)
	case Admin2Record:
		r.SetAdmin2Name(v.CountryCode, v.Admin1Code, v.Admin2Code, v.Name)
	default:
		return false
	}
	return true
}

// Seal marks the registry as complete: every definitional record has been
// registered and paths may be resolved.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// names returns the display names of the country, admin1 and admin2 nodes on
// the given path. Missing nodes yield empty names; nothing is created.
func (r *Registry) names(country, admin1, admin2 string) (cn, a1n, a2n string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.countries[country]
	if !ok {
		return
	}
	cn = c.name
	a1, ok := c.children[admin1]
	if !ok {
		return
	}
	a1n = a1.name
	if a2, ok := a1.children[admin2]; ok {
		a2n = a2.name
	}
	return
}

// RegistryStats counts the nodes at each level, named or not.
type RegistryStats struct {
	Countries int
	Admin1    int
	Admin2    int
	Unnamed   int
}

// Stats walks the registry and counts its nodes.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s RegistryStats
	for _, c := range r.countries {
		s.Countries++
		if c.name == "" {
			s.Unnamed++
		}
		for _, a1 := range c.children {
			s.Admin1++
			if a1.name == "" {
				s.Unnamed++
			}
			for _, a2 := range a1.children {
				s.Admin2++
				if a2.name == "" {
					s.Unnamed++
				}
			}
		}
	}
	return s
}
