package event

import (
	"net/http"

	"github.com/boredapes/ctaplanner/internal/rest"
)

type CatalogDTO struct {
	FormCategories   []Category `json:"formCategories"`
	LegendCategories []Category `json:"legendCategories"`
	TeamRequired     []Category `json:"teamRequired"`
	Teams            []Team     `json:"teams"`
	TimeSlots        []string   `json:"timeSlots"`
	Mismatch         Mismatch   `json:"mismatch"`
}

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// GetCatalog godoc
// @Summary Event catalog
// @Description Get the categories offered by the form and known to the legend, the teams and the hour slots.
// @Description The mismatch lists categories the two sets disagree on.
// @Tags Catalog
// @Produce json
// @Success 200 {object} CatalogDTO
// @Router /api/catalog [get]
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, CatalogDTO{
		FormCategories:   h.catalog.FormCategories(),
		LegendCategories: h.catalog.LegendCategories(),
		TeamRequired:     h.catalog.TeamRequired(),
		Teams:            h.catalog.Teams(),
		TimeSlots:        h.catalog.TimeSlots(),
		Mismatch:         h.catalog.Mismatch(),
	})
}
