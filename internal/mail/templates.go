package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateConfirmation = "confirmation"
	TemplateApproval     = "approval"
	TemplateRejection    = "rejection"
	TemplateReminder     = "reminder"
)

type TicketView struct {
	Serial     string
	MemberName string
	// ImageSrc is set when the QR image is embedded inline (cid:...).
	ImageSrc template.URL
}

type TemplateData struct {
	Name             string
	Email            string
	TeamName         string
	IsBulk           bool
	EventName        string
	EventType        string
	EventDate        string
	EventTime        string
	Venue            string
	Location         string
	OrganizationName string
	SupportEmail     string
	Amount           float64
	Currency         string
	Reason           string
	StartsIn         string
	Tickets          []TicketView
}

type Templates struct {
	t *template.Template
}

func LoadTemplates() (*Templates, error) {
	t, err := template.New("mail").Funcs(template.FuncMap{
		"money": func(amount float64, currency string) string {
			return currency + " " + humanize.CommafWithDigits(amount, 2)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// Render executes the named template (without the .html suffix).
func (t *Templates) Render(name string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.t.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// InlineSrc returns the body reference for an inline attachment.
func InlineSrc(filename string) template.URL {
	return template.URL("cid:" + filename)
}
