// Package dependent resolves the job options of a selected sector and keeps
// the job selection consistent with it.
package dependent

import (
	"sort"
	"strings"

	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/models"
)

// ResolveSecondaryOptions returns the jobs of primaryID, or nil when no
// sector is selected or the sector is unknown.
func ResolveSecondaryOptions(primaryID int64, hierarchy models.Hierarchy) []models.Job {
	if primaryID == 0 {
		return nil
	}
	sector, ok := hierarchy.Sector(primaryID)
	if !ok || len(sector.Jobs) == 0 {
		return nil
	}
	out := make([]models.Job, len(sector.Jobs))
	copy(out, sector.Jobs)
	return out
}

// Selection is the sector/job pair. The zero value has nothing selected.
type Selection struct {
	Primary   int64
	Secondary int64
}

// SetPrimary selects a sector. Any change, including to none, clears the job,
// even when the new sector happens to list the same job.
func (s *Selection) SetPrimary(id int64) bool {
	if id == s.Primary {
		return false
	}
	s.Primary = id
	s.Secondary = 0
	return true
}

// SetSecondary selects a job of the current sector; 0 clears it.
func (s *Selection) SetSecondary(id int64, hierarchy models.Hierarchy) error {
	if id == 0 {
		s.Secondary = 0
		return nil
	}
	if s.Primary == 0 {
		return apperrors.NewValidationError("job_id", "select a sector before a job")
	}
	for _, job := range ResolveSecondaryOptions(s.Primary, hierarchy) {
		if job.ID == id {
			s.Secondary = id
			return nil
		}
	}
	return apperrors.NewValidationError("job_id", "job does not belong to the selected sector")
}

// Clear resets both selections.
func (s *Selection) Clear() {
	s.Primary = 0
	s.Secondary = 0
}

// HierarchyFromItems derives sectors and their jobs from loaded items. Items
// without a sector id or name are skipped. Sectors and jobs are sorted by name.
func HierarchyFromItems(items []models.ListingItem) models.Hierarchy {
	return Merge(models.Hierarchy{}, items)
}

// Merge completes base with what the loaded items reveal: sectors missing
// from base are added, and jobs are attached to their sector when base has
// none for it. Sectors the backend already knows keep their jobs.
func Merge(base models.Hierarchy, items []models.ListingItem) models.Hierarchy {
	index := make(map[int64]int, len(base.Sectors))
	sectors := make([]models.Sector, 0, len(base.Sectors))
	for _, s := range base.Sectors {
		s.Jobs = append([]models.Job(nil), s.Jobs...)
		index[s.ID] = len(sectors)
		sectors = append(sectors, s)
	}
	fromBackend := make(map[int64]bool, len(sectors))
	for _, s := range sectors {
		fromBackend[s.ID] = len(s.Jobs) > 0
	}

	seenJob := make(map[int64]bool)
	for _, item := range items {
		if item.CategoryID == 0 {
			continue
		}
		i, ok := index[item.CategoryID]
		if !ok {
			if item.CategoryName == "" {
				continue
			}
			i = len(sectors)
			index[item.CategoryID] = i
			sectors = append(sectors, models.Sector{ID: item.CategoryID, Name: item.CategoryName})
		}
		if fromBackend[item.CategoryID] || item.SubCategoryID == 0 || item.SubCategoryName == "" {
			continue
		}
		if seenJob[item.SubCategoryID] {
			continue
		}
		seenJob[item.SubCategoryID] = true
		sectors[i].Jobs = append(sectors[i].Jobs, models.Job{
			ID:       item.SubCategoryID,
			Name:     item.SubCategoryName,
			SectorID: item.CategoryID,
		})
	}

	sort.SliceStable(sectors, func(a, b int) bool { return lessName(sectors[a].Name, sectors[b].Name) })
	for i := range sectors {
		jobs := sectors[i].Jobs
		sort.SliceStable(jobs, func(a, b int) bool { return lessName(jobs[a].Name, jobs[b].Name) })
	}
	return models.Hierarchy{Sectors: sectors}
}

func lessName(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
