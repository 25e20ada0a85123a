// Package tenant models the company → site → subsite hierarchy that selects
// which partition of the remote store holds the active POS data.
package tenant

import (
	"errors"
	"fmt"
)

// Scope is the active tenant selection. Empty string means unset. It is
// replaced wholesale on every selection change, never partially mutated.
type Scope struct {
	CompanyID string `json:"companyId"`
	SiteID    string `json:"siteId,omitempty"`
	SubsiteID string `json:"subsiteId,omitempty"`
}

// ErrInvalidScope is returned when a subsite is selected without a site.
var ErrInvalidScope = errors.New("subsite requires a site")

// Validate enforces the hierarchy invariant: SubsiteID set implies SiteID set.
func (s Scope) Validate() error {
	if s.SubsiteID != "" && s.SiteID == "" {
		return ErrInvalidScope
	}
	return nil
}

// Empty reports whether no company is selected yet. Callers treat an empty
// scope as "not ready" and skip synchronization rather than surfacing an error.
func (s Scope) Empty() bool { return s.CompanyID == "" }

// Resolve maps the scope to its ordered candidate storage paths, most
// specific first. A subsite falls back to its site so that shared site-level
// configuration is inherited when the subsite holds no data of its own.
// An empty CompanyID yields nil.
func Resolve(s Scope) []string {
	if s.CompanyID == "" {
		return nil
	}
	company := fmt.Sprintf("companies/%s", s.CompanyID)
	if s.SiteID == "" {
		return []string{company}
	}
	site := fmt.Sprintf("%s/sites/%s", company, s.SiteID)
	if s.SubsiteID == "" {
		return []string{site}
	}
	subsite := fmt.Sprintf("%s/subsites/%s", site, s.SubsiteID)
	return []string{subsite, site}
}

// Primary returns the most specific resolved path, or "" when the scope is
// not ready. CRUD writes always target the primary path.
func Primary(s Scope) string {
	paths := Resolve(s)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}
