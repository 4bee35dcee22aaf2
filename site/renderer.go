package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"arxiv-daily/archive"
	"arxiv-daily/config"
)

// Renderer regenerates the static archive site: one page per date, the
// index and the history listing. Rendering is deterministic: the same
// archive content produces byte-identical files.
type Renderer struct {
	outputDir string
	title     string

	day     *template.Template
	index   *template.Template
	history *template.Template
}

func New(cfg config.SiteConfig) *Renderer {
	funcs := template.FuncMap{
		"inc":  func(i int) int { return i + 1 },
		"join": strings.Join,
	}
	return &Renderer{
		outputDir: cfg.OutputDir,
		title:     cfg.Title,
		day:       template.Must(template.New("day").Funcs(funcs).Parse(dayTemplate)),
		index:     template.Must(template.New("index").Funcs(funcs).Parse(indexTemplate)),
		history:   template.Must(template.New("history").Funcs(funcs).Parse(historyTemplate)),
	}
}

// RenderSite regenerates the page for the given date plus the index and
// history. Any error is fatal for the run; atomic writes keep the
// published tree consistent.
func (r *Renderer) RenderSite(ctx context.Context, store archive.Store, date string) error {
	day, err := store.Day(ctx, date)
	if err != nil {
		return err
	}
	if err := r.RenderDay(day); err != nil {
		return err
	}

	dates, err := store.Dates(ctx)
	if err != nil {
		return err
	}
	// The day page may exist before the index records the date, never
	// the other way around.
	found := false
	for _, d := range dates {
		if d == date {
			found = true
			break
		}
	}
	if !found {
		dates = append(dates, date)
		sort.Strings(dates)
	}

	latest := day
	if len(dates) > 0 && dates[len(dates)-1] != date {
		latest, err = store.Day(ctx, dates[len(dates)-1])
		if err != nil {
			return err
		}
	}

	if err := r.RenderIndex(latest); err != nil {
		return err
	}
	return r.RenderHistory(dates)
}

// RenderDay writes days/{date}.html.
func (r *Renderer) RenderDay(day *archive.Day) error {
	data := struct {
		Title string
		CSS   template.CSS
		Day   *archive.Day
	}{r.title, template.CSS(baseCSS), day}

	return r.render(r.day, filepath.Join("days", day.Date+".html"), data)
}

// RenderIndex writes index.html pointing at the latest day.
func (r *Renderer) RenderIndex(latest *archive.Day) error {
	data := struct {
		Title  string
		CSS    template.CSS
		Latest *archive.Day
	}{r.title, template.CSS(baseCSS), latest}

	return r.render(r.index, "index.html", data)
}

// RenderHistory writes history.html with newest dates first.
func (r *Renderer) RenderHistory(dates []string) error {
	desc := make([]string, len(dates))
	copy(desc, dates)
	sort.Sort(sort.Reverse(sort.StringSlice(desc)))

	data := struct {
		Title string
		CSS   template.CSS
		Dates []string
	}{r.title, template.CSS(baseCSS), desc}

	return r.render(r.history, "history.html", data)
}

func (r *Renderer) render(tpl *template.Template, relPath string, data any) error {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", relPath, err)
	}

	path := filepath.Join(r.outputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
