package models

// Sector is a primary category owning zero or more jobs.
type Sector struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Jobs []Job  `json:"jobs,omitempty"`
}

// Job is a secondary category; only valid under its sector.
type Job struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SectorID int64  `json:"sector_id"`
}

// Organization is a company referenced by offers.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"company_name"`
}

// Hierarchy is the sector -> jobs tree used by the dependent filter.
type Hierarchy struct {
	Sectors []Sector `json:"sectors"`
}

// Sector looks up a sector by id.
func (h Hierarchy) Sector(id int64) (Sector, bool) {
	for _, s := range h.Sectors {
		if s.ID == id {
			return s, true
		}
	}
	return Sector{}, false
}

// Empty reports whether the hierarchy has no sectors.
func (h Hierarchy) Empty() bool {
	return len(h.Sectors) == 0
}
