package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Filter keys. The same names are used as query parameters when a listing
// delegates a filter to the backend.
const (
	FilterSearch       = "search"
	FilterSector       = "sector_id"
	FilterJob          = "job_id"
	FilterOrganization = "organization_id"
	FilterCity         = "city"
	FilterContractType = "contract_type"
	FilterStatus       = "status"
)

// TriState is a three-way filter: no constraint, must be true, must be false.
type TriState int

const (
	Any TriState = iota
	Yes
	No
)

func (s TriState) String() string {
	switch s {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "any"
	}
}

// ParseTriState accepts "yes"/"true"/"1", "no"/"false"/"0"; anything else is Any.
func ParseTriState(v string) TriState {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1":
		return Yes
	case "no", "false", "0":
		return No
	default:
		return Any
	}
}

// FilterState holds every user-controlled filter. A zero value for any field
// means "not applied". It is passed by value.
type FilterState struct {
	Search         string
	SectorID       int64
	JobID          int64
	OrganizationID int64
	City           string
	ContractType   string
	Status         TriState
	// Extra holds server-only filters (gender, education_level, min_experience...).
	Extra map[string]string
}

// IsEmpty reports whether no filter is active.
func (f FilterState) IsEmpty() bool {
	if strings.TrimSpace(f.Search) != "" || f.SectorID != 0 || f.JobID != 0 ||
		f.OrganizationID != 0 || f.City != "" || f.ContractType != "" || f.Status != Any {
		return false
	}
	for _, v := range f.Extra {
		if v != "" {
			return false
		}
	}
	return true
}

// Values returns the active filters keyed by filter name.
func (f FilterState) Values() map[string]string {
	out := make(map[string]string)
	if s := strings.TrimSpace(f.Search); s != "" {
		out[FilterSearch] = s
	}
	if f.SectorID != 0 {
		out[FilterSector] = strconv.FormatInt(f.SectorID, 10)
	}
	if f.JobID != 0 {
		out[FilterJob] = strconv.FormatInt(f.JobID, 10)
	}
	if f.OrganizationID != 0 {
		out[FilterOrganization] = strconv.FormatInt(f.OrganizationID, 10)
	}
	if f.City != "" {
		out[FilterCity] = f.City
	}
	if f.ContractType != "" {
		out[FilterContractType] = f.ContractType
	}
	if f.Status != Any {
		out[FilterStatus] = f.Status.String()
	}
	for k, v := range f.Extra {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Split separates the filters the backend handles (serverKeys) from the ones
// applied locally. Server filters are returned as query values; the local
// state has those keys cleared so they pass through. Extra filters are always
// server side.
func (f FilterState) Split(serverKeys []string) (FilterState, url.Values) {
	server := url.Values{}
	isServer := make(map[string]bool, len(serverKeys))
	for _, k := range serverKeys {
		isServer[k] = true
	}

	values := f.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	local := f
	local.Extra = nil
	for _, k := range keys {
		if !isServer[k] && !f.isExtra(k) {
			continue
		}
		server.Set(k, values[k])
		local = local.without(k)
	}
	return local, server
}

func (f FilterState) isExtra(key string) bool {
	_, ok := f.Extra[key]
	return ok
}

func (f FilterState) without(key string) FilterState {
	switch key {
	case FilterSearch:
		f.Search = ""
	case FilterSector:
		f.SectorID = 0
	case FilterJob:
		f.JobID = 0
	case FilterOrganization:
		f.OrganizationID = 0
	case FilterCity:
		f.City = ""
	case FilterContractType:
		f.ContractType = ""
	case FilterStatus:
		f.Status = Any
	}
	return f
}

// WithExtra returns a copy with a server-only filter set ("" removes it).
func (f FilterState) WithExtra(key, value string) FilterState {
	extra := make(map[string]string, len(f.Extra)+1)
	for k, v := range f.Extra {
		extra[k] = v
	}
	if value == "" {
		delete(extra, key)
	} else {
		extra[key] = value
	}
	f.Extra = extra
	return f
}
