package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// District groups the cities a request may be filed for.
type District struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Cities    pq.StringArray `db:"cities" json:"cities"`
	IsActive  bool           `db:"is_active" json:"isActive"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasCity reports whether city belongs to the district, ignoring case and surrounding spaces.
func (d *District) HasCity(city string) bool {
	_, ok := d.MatchCity(city)
	return ok
}

// MatchCity returns the district's own spelling of city.
func (d *District) MatchCity(city string) (string, bool) {
	if d == nil {
		return "", false
	}
	needle := strings.TrimSpace(city)
	for _, c := range d.Cities {
		if strings.EqualFold(strings.TrimSpace(c), needle) {
			return strings.TrimSpace(c), true
		}
	}
	return "", false
}

// DistrictFilter constrains district listings.
type DistrictFilter struct {
	Active *bool
	City   string
}
