package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"CandleScan/internal/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page templates for echo's c.Render.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"chartURL": chartURL,
		"signalClass": func(s models.Signal) string {
			if s == "" {
				return "none"
			}
			return string(s)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

func chartURL(symbol string) string {
	return "https://finviz.com/chart.ashx?ty=c&ta=1&p=d&s=l&t=" + template.URLQueryEscaper(symbol)
}
