package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestPaginationMeta_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationMeta
		want PaginationMeta
	}{
		{"zero value", PaginationMeta{}, PaginationMeta{CurrentPage: 1, LastPage: 1}},
		{"middle page", PaginationMeta{CurrentPage: 2, LastPage: 3, TotalCount: 25}, PaginationMeta{CurrentPage: 2, LastPage: 3, TotalCount: 25, HasMore: true}},
		{"last page", PaginationMeta{CurrentPage: 3, LastPage: 3, TotalCount: 25, HasMore: true}, PaginationMeta{CurrentPage: 3, LastPage: 3, TotalCount: 25}},
		{"last before current", PaginationMeta{CurrentPage: 4, LastPage: 2}, PaginationMeta{CurrentPage: 4, LastPage: 4}},
		{"negative total", PaginationMeta{CurrentPage: 1, LastPage: 1, TotalCount: -3}, PaginationMeta{CurrentPage: 1, LastPage: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestWirePagination_Meta(t *testing.T) {
	t.Run("missing pagination defaults", func(t *testing.T) {
		var p *WirePagination
		assert.Equal(t, PaginationMeta{CurrentPage: 1, LastPage: 1, TotalCount: 0}, p.Meta())
	})

	t.Run("derived from pages", func(t *testing.T) {
		p := &WirePagination{CurrentPage: 1, LastPage: 3, Total: 25, PerPage: 10}
		m := p.Meta()
		assert.True(t, m.HasMore)
		assert.Equal(t, 25, m.TotalCount)
	})

	t.Run("has_more_pages false closes the range", func(t *testing.T) {
		p := &WirePagination{CurrentPage: 2, LastPage: 5, HasMorePages: boolPtr(false)}
		m := p.Meta()
		assert.False(t, m.HasMore)
		assert.Equal(t, 2, m.LastPage)
	})

	t.Run("has_more_pages true opens the range", func(t *testing.T) {
		p := &WirePagination{CurrentPage: 2, HasMorePages: boolPtr(true)}
		m := p.Meta()
		assert.True(t, m.HasMore)
		assert.Equal(t, 3, m.LastPage)
	})
}

func TestFilterState_IsEmptyAndValues(t *testing.T) {
	assert.True(t, FilterState{}.IsEmpty())
	assert.True(t, FilterState{Search: "   "}.IsEmpty())
	assert.Empty(t, FilterState{}.Values())

	f := FilterState{Search: " dev ", SectorID: 2, Status: No}.WithExtra("gender", "female")
	assert.False(t, f.IsEmpty())
	assert.Equal(t, map[string]string{
		FilterSearch: "dev",
		FilterSector: "2",
		FilterStatus: "no",
		"gender":     "female",
	}, f.Values())
}

func TestFilterState_Split(t *testing.T) {
	f := FilterState{Search: "go", SectorID: 3, JobID: 7, City: "Tunis"}.WithExtra("min_experience", "2")

	local, server := f.Split([]string{FilterSector, FilterJob, FilterCity})

	assert.Equal(t, "3", server.Get(FilterSector))
	assert.Equal(t, "7", server.Get(FilterJob))
	assert.Equal(t, "Tunis", server.Get(FilterCity))
	assert.Equal(t, "2", server.Get("min_experience"))
	assert.Empty(t, server.Get(FilterSearch))

	assert.Equal(t, "go", local.Search)
	assert.Zero(t, local.SectorID)
	assert.Zero(t, local.JobID)
	assert.Empty(t, local.City)
	assert.Nil(t, local.Extra)

	// the original is passed by value and left alone
	assert.Equal(t, int64(3), f.SectorID)
}

func TestFilterState_WithExtraDoesNotAlias(t *testing.T) {
	a := FilterState{}.WithExtra("gender", "male")
	b := a.WithExtra("gender", "")
	assert.Equal(t, "male", a.Extra["gender"])
	_, ok := b.Extra["gender"]
	assert.False(t, ok)
}

func TestParseTriState(t *testing.T) {
	assert.Equal(t, Yes, ParseTriState("true"))
	assert.Equal(t, Yes, ParseTriState(" YES "))
	assert.Equal(t, No, ParseTriState("0"))
	assert.Equal(t, Any, ParseTriState(""))
	assert.Equal(t, Any, ParseTriState("maybe"))
}

func TestMapOffer(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 12, "titre": "Marketing Manager", "description": "<p>Lead</p>",
		"company_name": "Acme", "sector_name": "Sales", "job_name": "Manager",
		"location": " Sfax ", "contractType": "CDI", "created_at": "2024-03-01T10:00:00Z",
		"sector_id": "4", "job_id": 9, "entreprise_id": 2, "has_applied": true
	}`)

	item, err := MapOffer(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.ID)
	assert.Equal(t, "Marketing Manager", item.Title)
	assert.Equal(t, "Sfax", item.Location)
	assert.Equal(t, int64(4), item.CategoryID)
	assert.Equal(t, int64(9), item.SubCategoryID)
	assert.Equal(t, int64(2), item.OrganizationID)
	assert.Equal(t, 2024, item.CreatedAt.Year())
	require.NotNil(t, item.StatusFlag)
	assert.True(t, *item.StatusFlag)
}

func TestMapCandidate(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 5, "full_name": "Sara B.", "bio": "Designer", "city": "Tunis",
		"years_of_experience": 3, "link": "https://cdn/v.mp4",
		"job": {"id": 8, "name": "UX Designer", "sector_id": 2},
		"skills": [{"name": "Figma"}, {"name": "CSS"}]
	}`)

	item, err := MapCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sara B.", item.Title)
	assert.Equal(t, int64(2), item.CategoryID)
	assert.Equal(t, int64(8), item.SubCategoryID)
	assert.Equal(t, "3", item.Attr("years_of_experience"))
	assert.Equal(t, "https://cdn/v.mp4", item.Attr("video"))
	assert.Equal(t, "Figma, CSS", item.Attr("skills"))
	assert.Nil(t, item.StatusFlag)
}

func TestMapperFor(t *testing.T) {
	_, ok := MapperFor(KindOffers)
	assert.True(t, ok)
	_, ok = MapperFor("unknown")
	assert.False(t, ok)
}

func TestPayment_CanConsume(t *testing.T) {
	var none *Payment
	assert.False(t, none.CanConsume())
	assert.False(t, (&Payment{Status: PaymentPending, CVVideoRemaining: 3}).CanConsume())
	assert.False(t, (&Payment{Status: PaymentCompleted}).CanConsume())
	assert.True(t, (&Payment{Status: PaymentCompleted, CVVideoRemaining: 1}).CanConsume())
}

func TestHierarchy_Sector(t *testing.T) {
	h := Hierarchy{Sectors: []Sector{{ID: 1, Name: "IT"}}}
	s, ok := h.Sector(1)
	assert.True(t, ok)
	assert.Equal(t, "IT", s.Name)
	_, ok = h.Sector(2)
	assert.False(t, ok)
	assert.True(t, Hierarchy{}.Empty())
}
