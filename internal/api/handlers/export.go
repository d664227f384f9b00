package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/response"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/export"
)

// ExportChartData writes the rows behind a chart as CSV or JSON.
// GET /api/v1/export/{name}?format=csv&class=Mage&window=30&card=Fireball
func (h *DashboardHandler) ExportChartData(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadQuery, err))
		return
	}
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	name := chi.URLParam(r, "name")
	rows, err := h.facade.Data(name, q)
	if err != nil {
		writeError(w, err)
		return
	}

	if format == export.FormatCSV {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	}
	response.Render(w, format.ContentType(), func(out io.Writer) error {
		return export.ExportToWriter(out, format, rows, false)
	})
}
