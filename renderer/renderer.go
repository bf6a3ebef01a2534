// Package renderer turns tradebook reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/tradebook"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// Options holds the rendering configuration.
type Options struct {
	Currency string // ISO code used to format amounts, BRL by default.
}

func (o Options) funcs() template.FuncMap {
	cur := o.Currency
	if cur == "" {
		cur = "BRL"
	}
	return template.FuncMap{
		"money": func(d decimal.Decimal) string { return tradebook.M(d, cur).String() },
	}
}

var problemsPartial = map[string]string{"problems": "problems.md"}

// RenderPortfolio renders the consolidated positions and the problems met while building them.
func RenderPortfolio(positions []tradebook.Position, problems []error, opts Options) string {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Investment)
	}
	data := struct {
		Positions []tradebook.Position
		Total     decimal.Decimal
		Problems  []error
	}{positions, total, problems}
	return renderTemplate("portfolio", "portfolio.md", problemsPartial, opts.funcs(), data)
}

// RenderAnnual renders the yearly investments.
func RenderAnnual(annual []tradebook.AnnualAmount, opts Options) string {
	return renderTemplate("annual", "annual.md", nil, opts.funcs(), annual)
}

// RenderHistory renders the position history of a symbol.
func RenderHistory(symbol string, history []tradebook.HistoryEntry, opts Options) string {
	data := struct {
		Symbol  string
		History []tradebook.HistoryEntry
	}{symbol, history}
	return renderTemplate("history", "history.md", nil, opts.funcs(), data)
}

// RenderDividends renders the dividend story of a symbol.
func RenderDividends(symbol string, dividends []tradebook.DividendAttribution, problems []error, opts Options) string {
	data := struct {
		Symbol    string
		Dividends []tradebook.DividendAttribution
		Total     decimal.Decimal
		Problems  []error
	}{symbol, dividends, tradebook.TotalReceived(dividends), problems}
	return renderTemplate("dividends", "dividends.md", problemsPartial, opts.funcs(), data)
}

// RenderIntake renders the preview of planned purchases.
func RenderIntake(previews []tradebook.IntakePreview, opts Options) string {
	return renderTemplate("intake", "intake.md", nil, opts.funcs(), previews)
}

// RenderValidation renders the valid trade confirmations and the rejected ones.
func RenderValidation(tcs []*tradebook.TradeConfirmation, problems []error, opts Options) string {
	data := struct {
		Confirmations []*tradebook.TradeConfirmation
		Problems      []error
	}{tcs, problems}
	return renderTemplate("validation", "validation.md", problemsPartial, opts.funcs(), data)
}

// Problems splits a joined error into its parts.
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var res []error
		for _, e := range joined.Unwrap() {
			res = append(res, Problems(e)...)
		}
		return res
	}
	return []error{err}
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, funcs template.FuncMap, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
