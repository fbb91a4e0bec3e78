package chat

import (
	"bytes"
	"html/template"
)

var cardTemplate = template.Must(template.New("card").Parse(
	`<div class="taberna-card {{.Card.Kind}}">` +
		`<h3>{{.Card.Title}}</h3>` +
		`{{if .Card.Outcome}}<div class="outcome {{.Card.OutcomeKey}}">{{.Card.Outcome}}</div>{{end}}` +
		`{{if .Card.Fields}}<ul>{{range .Card.Fields}}<li><strong>{{.Label}}:</strong> {{.Value}}</li>{{end}}</ul>{{end}}` +
		`{{if .Card.Description}}<p>{{.Card.Description}}</p>{{end}}` +
		`{{if and .ShowFormulas .Card.Formula}}<div class="formula">{{.Card.Formula}}</div>{{end}}` +
		`{{if .Card.Total}}<div class="total">{{.Card.Total}}</div>{{end}}` +
		`</div>`))

// Renderer turns cards into HTML fragments.
type Renderer struct {
	// ShowFormulas includes the roll formula in rendered cards.
	ShowFormulas bool
}

// Render returns the HTML fragment for card. Every value is escaped.
func (r Renderer) Render(card Card) (string, error) {
	var buf bytes.Buffer
	err := cardTemplate.Execute(&buf, struct {
		Card         Card
		ShowFormulas bool
	}{card, r.ShowFormulas})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
