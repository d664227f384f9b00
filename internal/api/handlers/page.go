package handlers

import (
	"html/template"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/response"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/dashboard"
)

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Hearthstone deck analysis</title>
<style>
body { font-family: sans-serif; margin: 2em; }
form { margin-bottom: 1em; }
iframe { border: none; width: 960px; height: 560px; display: block; }
select[multiple] { min-width: 20em; height: 8em; }
</style>
</head>
<body>
<h1>Hearthstone deck analysis</h1>
<p>{{.Decks}} ranked decks, {{.First}} to {{.Last}}.</p>

<h2>Classes and craft cost</h2>
<iframe src="/charts/class-frequency"></iframe>
<iframe src="/charts/cost-distribution"></iframe>

<h2>Decks over time</h2>
<iframe src="/charts/decks-per-day?events=true"></iframe>

<h2>Rarity structure</h2>
<form method="get" action="/">
<label>Class
<select name="class">
{{range .Classes}}<option value="{{.}}"{{if eq . $.Class}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<label><input type="checkbox" name="events" value="true"{{if .ShowEvents}} checked{{end}}> Show adventures and expansions</label>
<label>From <input type="date" name="from" value="{{.From}}"></label>
<label>To <input type="date" name="to" value="{{.To}}"></label>
{{range .Cards}}<input type="hidden" name="card" value="{{.}}">
{{end}}<button type="submit">Update</button>
</form>
<iframe src="{{.RarityURL}}"></iframe>
<iframe src="{{.MechanicURL}}"></iframe>

<h2>Card popularity</h2>
<form method="get" action="/">
<input type="hidden" name="class" value="{{.Class}}">
{{if .From}}<input type="hidden" name="from" value="{{.From}}">
{{end}}{{if .To}}<input type="hidden" name="to" value="{{.To}}">
{{end}}{{if .ShowEvents}}<input type="hidden" name="events" value="true">
{{end}}<select name="card" multiple>
{{range .CardNames}}<option value="{{.}}"{{if $.Selected .}} selected{{end}}>{{.}}</option>
{{end}}</select>
<button type="submit">Show</button>
</form>
{{range .PopularityURLs}}<iframe src="{{.}}"></iframe>
{{end}}
</body>
</html>
`))

type pageData struct {
	Decks          int
	First, Last    string
	Classes        []string
	Class          string
	ShowEvents     bool
	From, To       string
	CardNames      []string
	Cards          []string
	RarityURL      string
	MechanicURL    string
	PopularityURLs []string
}

func (p pageData) Selected(card string) bool {
	return slices.Contains(p.Cards, card)
}

func chartURL(name string, params url.Values) string {
	u := url.URL{Path: "/charts/" + name, RawQuery: params.Encode()}
	return u.String()
}

// Index renders the dashboard page. Unknown cards in the selection are dropped.
// GET /?class=Mage&events=true&card=Fireball&card=Leeroy%20Jenkins
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.facade.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	names, err := h.facade.CardNames()
	if err != nil {
		writeError(w, err)
		return
	}

	data := pageData{
		Decks:      summary.Decks,
		First:      summary.FirstDate.Format("2006-01-02"),
		Last:       summary.LastDate.Format("2006-01-02"),
		Classes:    h.facade.Classes(),
		Class:      q.Class,
		ShowEvents: q.ShowEvents,
		CardNames:  names,
	}
	if data.Class == "" {
		data.Class = dashboard.AllClasses
	}
	// Classes match case-insensitively; the selector and the chart URLs
	// carry the listed spelling.
	for _, class := range data.Classes {
		if strings.EqualFold(class, data.Class) {
			data.Class = class
			break
		}
	}

	for _, card := range r.URL.Query()["card"] {
		if _, found := slices.BinarySearch(names, card); found && !slices.Contains(data.Cards, card) {
			data.Cards = append(data.Cards, card)
		}
	}

	data.From, data.To = r.URL.Query().Get("from"), r.URL.Query().Get("to")
	period := url.Values{}
	if data.From != "" {
		period.Set("from", data.From)
	}
	if data.To != "" {
		period.Set("to", data.To)
	}

	params := url.Values{}
	maps.Copy(params, period)
	params.Set("class", data.Class)
	params.Set("events", strconv.FormatBool(data.ShowEvents))
	if q.Window > 0 {
		params.Set("window", strconv.Itoa(q.Window))
	}
	data.RarityURL = chartURL(dashboard.ChartRarityStructure, params)
	data.MechanicURL = chartURL(dashboard.ChartMechanicProfile, url.Values{"class": {data.Class}})
	for _, card := range data.Cards {
		cardParams := url.Values{"card": {card}}
		maps.Copy(cardParams, period)
		data.PopularityURLs = append(data.PopularityURLs, chartURL(dashboard.ChartCardPopularity, cardParams))
	}

	response.HTML(w, func(out io.Writer) error {
		return pageTemplate.Execute(out, data)
	})
}
