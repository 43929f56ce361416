package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

//go:embed templates/*.html
var embedded embed.FS

const layoutFile = "layout.html"

// Renderer executes page templates. Each page is parsed together with the
// shared layout so every page can define its own "content" block.
type Renderer struct {
	fsys fs.FS

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewRenderer parses the templates in dir, or the embedded set when dir is empty.
func NewRenderer(dir string) (*Renderer, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	r := &Renderer{fsys: fsys}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

var funcs = template.FuncMap{
	// safe marks a value that was HTML-escaped before it was stored.
	"safe": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
	"dateInput": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

// Reload re-parses every page. On failure the previous set stays active.
func (r *Renderer) Reload() error {
	names, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("web: list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(funcs).ParseFS(r.fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = t
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	r.mu.RLock()
	t, ok := r.pages[page]
	r.mu.RUnlock()
	if !ok {
		slog.Error("template not found", slog.String("page", page))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		slog.Error("template execute failed", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Watch reloads the templates whenever a file in dir changes, until ctx is
// cancelled. Bursts of events are coalesced into one reload.
func (r *Renderer) Watch(ctx context.Context, dir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("templates: watching", slog.String("dir", dir))

	var (
		debounce *time.Timer
		reloadCh <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("templates: watcher stopped")
			return nil

		case <-reloadCh:
			if err := r.Reload(); err != nil {
				logger.Warn("templates: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("templates: reloaded")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".html" || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(100 * time.Millisecond)
				reloadCh = debounce.C
			} else {
				debounce.Reset(100 * time.Millisecond)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("templates: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
