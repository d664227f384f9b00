package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/response"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/charts"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/dashboard"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
)

// Facade is the dashboard behaviour the handlers depend on.
type Facade interface {
	Classes() []string
	CardNames() ([]string, error)
	RarityWindow() int
	Summary() (*dashboard.Summary, error)
	ClassFrequency() (*dashboard.ClassFrequencyView, error)
	CostDistribution() (*dashboard.CostDistributionView, error)
	DecksPerDay(showEvents bool) (*dashboard.DecksPerDayView, error)
	RarityStructure(class string, window int, showEvents bool) (*dashboard.TimeSeriesView, error)
	CardPopularity(card string) (*dashboard.TimeSeriesView, error)
	MechanicProfile(class string) (*dashboard.MechanicProfileView, error)
	Chart(name string, q dashboard.Query) (charts.Chart, error)
	Data(name string, q dashboard.Query) (any, error)
}

// DashboardHandler serves the dashboard data as JSON and charts as HTML.
type DashboardHandler struct {
	facade Facade
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(facade Facade) *DashboardHandler {
	return &DashboardHandler{facade: facade}
}

var errBadQuery = errors.New("invalid query")

// ParseQuery reads the class, window, events, card, from and to parameters.
func ParseQuery(r *http.Request) (dashboard.Query, error) {
	values := r.URL.Query()
	q := dashboard.Query{
		Class: values.Get("class"),
		Card:  values.Get("card"),
	}

	if s := values.Get("window"); s != "" {
		window, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("%w: window %q is not a number", errBadQuery, s)
		}
		if window <= 0 {
			return q, fmt.Errorf("%w: %d", dashboard.ErrInvalidWindow, window)
		}
		q.Window = window
	}

	if s := values.Get("events"); s != "" {
		show, err := strconv.ParseBool(s)
		if err != nil {
			// HTML checkboxes submit "on".
			show = s == "on"
			if !show {
				return q, fmt.Errorf("%w: events %q is not a boolean", errBadQuery, s)
			}
		}
		q.ShowEvents = show
	}

	rng, err := stats.ParseRange(values.Get("from"), values.Get("to"))
	if err != nil {
		return q, fmt.Errorf("%w: %v", errBadQuery, err)
	}
	q.Range = rng

	return q, nil
}

// writeError maps dashboard errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, dashboard.ErrUnknownClass),
		errors.Is(err, dashboard.ErrInvalidWindow):
		response.BadRequest(w, err)
	case errors.Is(err, dashboard.ErrUnknownCard),
		errors.Is(err, dashboard.ErrUnknownChart):
		response.NotFound(w, err)
	default:
		response.InternalError(w, err)
	}
}

// GetClasses returns the class selector values.
// GET /api/v1/classes
func (h *DashboardHandler) GetClasses(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.facade.Classes())
}

// GetCards returns the deck-eligible card names.
// GET /api/v1/cards
func (h *DashboardHandler) GetCards(w http.ResponseWriter, _ *http.Request) {
	names, err := h.facade.CardNames()
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, names)
}

// GetSummary returns dataset and load statistics.
// GET /api/v1/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.facade.Summary()
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}

// GetClassFrequency returns decks per class.
// GET /api/v1/class-frequency
func (h *DashboardHandler) GetClassFrequency(w http.ResponseWriter, _ *http.Request) {
	view, err := h.facade.ClassFrequency()
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// GetCostDistribution returns the craft cost histogram.
// GET /api/v1/cost-distribution
func (h *DashboardHandler) GetCostDistribution(w http.ResponseWriter, _ *http.Request) {
	view, err := h.facade.CostDistribution()
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// GetDecksPerDay returns daily submission counts.
// GET /api/v1/decks-per-day?events=true
func (h *DashboardHandler) GetDecksPerDay(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.facade.DecksPerDay(q.ShowEvents)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// GetRarityStructure returns the rolling rarity composition.
// GET /api/v1/rarity-structure?class=Mage&window=30&events=true
func (h *DashboardHandler) GetRarityStructure(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if q.Window == 0 {
		q.Window = h.facade.RarityWindow()
	}

	view, err := h.facade.RarityStructure(q.Class, q.Window, q.ShowEvents)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// GetCardPopularity returns the rolling popularity of one card.
// GET /api/v1/card-popularity?card=Leeroy%20Jenkins
func (h *DashboardHandler) GetCardPopularity(w http.ResponseWriter, r *http.Request) {
	card := r.URL.Query().Get("card")
	if card == "" {
		response.BadRequest(w, errors.New("card is required"))
		return
	}

	view, err := h.facade.CardPopularity(card)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// GetMechanicProfile returns mean mechanic group sizes of a class.
// GET /api/v1/mechanic-profile?class=Warrior
func (h *DashboardHandler) GetMechanicProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.facade.MechanicProfile(r.URL.Query().Get("class"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view)
}

// RenderChart writes one chart as a standalone HTML document.
// GET /charts/{name}?class=Mage&window=30&events=true&card=Fireball
func (h *DashboardHandler) RenderChart(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	chart, err := h.facade.Chart(chi.URLParam(r, "name"), q)
	if err != nil {
		writeError(w, err)
		return
	}

	response.HTML(w, chart.Render)
}
