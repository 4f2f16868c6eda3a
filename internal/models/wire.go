package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kinds of listing. Each kind has its own wire shape and mapper.
const (
	KindOffers     = "offers"
	KindCandidates = "candidates"
)

// Envelope is the paginated response body.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *WirePagination `json:"pagination"`
}

// WirePagination is the backend's pagination object.
type WirePagination struct {
	CurrentPage  int   `json:"current_page"`
	LastPage     int   `json:"last_page"`
	Total        int   `json:"total"`
	PerPage      int   `json:"per_page"`
	HasMorePages *bool `json:"has_more_pages"`
}

// Meta converts the wire pagination to a normalised PaginationMeta.
func (p *WirePagination) Meta() PaginationMeta {
	if p == nil {
		return DefaultPaginationMeta().Normalize()
	}
	meta := PaginationMeta{
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		TotalCount:  p.Total,
		PerPage:     p.PerPage,
	}.Normalize()
	// has_more_pages wins only when it agrees with a reachable next page;
	// otherwise last_page is widened or narrowed so the invariant holds.
	if p.HasMorePages != nil {
		if *p.HasMorePages && meta.LastPage <= meta.CurrentPage {
			meta.LastPage = meta.CurrentPage + 1
		}
		if !*p.HasMorePages && meta.LastPage > meta.CurrentPage {
			meta.LastPage = meta.CurrentPage
		}
		meta = meta.Normalize()
	}
	return meta
}

// Mapper turns one validated raw item into a ListingItem.
type Mapper func(raw json.RawMessage) (ListingItem, error)

// MapperFor returns the mapper of a listing kind.
func MapperFor(kind string) (Mapper, bool) {
	switch kind {
	case KindOffers:
		return MapOffer, true
	case KindCandidates:
		return MapCandidate, true
	default:
		return nil, false
	}
}

// OfferDTO is the wire shape of a job offer.
type OfferDTO struct {
	ID           int64   `json:"id"`
	Titre        string  `json:"titre"`
	Description  string  `json:"description"`
	CompanyName  string  `json:"company_name"`
	SectorName   string  `json:"sector_name"`
	JobName      string  `json:"job_name"`
	Location     string  `json:"location"`
	ContractType string  `json:"contractType"`
	DateDebut    string  `json:"date_debut"`
	DateFin      string  `json:"date_fin"`
	CreatedAt    string  `json:"created_at"`
	SectorID     flexID  `json:"sector_id"`
	JobID        flexID  `json:"job_id"`
	EntrepriseID flexID  `json:"entreprise_id"`
	HasApplied   *bool   `json:"has_applied"`
	Salary       *string `json:"salary"`
}

// MapOffer decodes an offer.
func MapOffer(raw json.RawMessage) (ListingItem, error) {
	var dto OfferDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return ListingItem{}, err
	}
	item := ListingItem{
		ID:               dto.ID,
		Title:            dto.Titre,
		Description:      dto.Description,
		OrganizationID:   int64(dto.EntrepriseID),
		OrganizationName: dto.CompanyName,
		CategoryID:       int64(dto.SectorID),
		CategoryName:     dto.SectorName,
		SubCategoryID:    int64(dto.JobID),
		SubCategoryName:  dto.JobName,
		Location:         strings.TrimSpace(dto.Location),
		ContractType:     dto.ContractType,
		CreatedAt:        parseTime(dto.CreatedAt),
		StatusFlag:       dto.HasApplied,
	}
	attrs := map[string]string{}
	if dto.DateDebut != "" {
		attrs["date_debut"] = dto.DateDebut
	}
	if dto.DateFin != "" {
		attrs["date_fin"] = dto.DateFin
	}
	if dto.Salary != nil && *dto.Salary != "" {
		attrs["salary"] = *dto.Salary
	}
	if len(attrs) > 0 {
		item.Attributes = attrs
	}
	return item, nil
}

// CandidateDTO is the wire shape of a published candidate.
type CandidateDTO struct {
	ID                int64   `json:"id"`
	CVID              int64   `json:"cv_id"`
	Image             string  `json:"image"`
	FullName          string  `json:"full_name"`
	Link              string  `json:"link"`
	City              string  `json:"city"`
	YearsOfExperience float64 `json:"years_of_experience"`
	Bio               string  `json:"bio"`
	Gender            string  `json:"gender"`
	EducationLevel    string  `json:"education_level"`
	CreatedAt         string  `json:"created_at"`
	IsConsumed        *bool   `json:"is_consumed"`
	Job               *struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		SectorID flexID `json:"sector_id"`
	} `json:"job"`
	Sector *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"sector"`
	Skills []struct {
		Name string `json:"name"`
	} `json:"skills"`
}

// MapCandidate decodes a candidate. The job name is the title fallback.
func MapCandidate(raw json.RawMessage) (ListingItem, error) {
	var dto CandidateDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return ListingItem{}, err
	}
	item := ListingItem{
		ID:          dto.ID,
		Title:       dto.FullName,
		Description: dto.Bio,
		Location:    strings.TrimSpace(dto.City),
		CreatedAt:   parseTime(dto.CreatedAt),
		StatusFlag:  dto.IsConsumed,
	}
	if dto.Job != nil {
		item.SubCategoryID = dto.Job.ID
		item.SubCategoryName = dto.Job.Name
		item.CategoryID = int64(dto.Job.SectorID)
		if item.Title == "" {
			item.Title = dto.Job.Name
		}
	}
	if dto.Sector != nil {
		item.CategoryID = dto.Sector.ID
		item.CategoryName = dto.Sector.Name
	}

	attrs := map[string]string{
		"years_of_experience": strconv.FormatFloat(dto.YearsOfExperience, 'f', -1, 64),
	}
	if dto.CVID != 0 {
		attrs["cv_id"] = strconv.FormatInt(dto.CVID, 10)
	}
	if dto.Link != "" {
		attrs["video"] = dto.Link
	}
	if dto.Image != "" {
		attrs["image"] = dto.Image
	}
	if dto.Gender != "" {
		attrs["gender"] = dto.Gender
	}
	if dto.EducationLevel != "" {
		attrs["education_level"] = dto.EducationLevel
	}
	if len(dto.Skills) > 0 {
		names := make([]string, 0, len(dto.Skills))
		for _, s := range dto.Skills {
			names = append(names, s.Name)
		}
		attrs["skills"] = strings.Join(names, ", ")
	}
	item.Attributes = attrs
	return item, nil
}

// flexID accepts ids encoded either as numbers or numeric strings; the
// backend is not consistent about it. Anything else decodes to 0.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(n)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
