package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"group-chat/domain"
)

//go:embed inspect.html
var templatesFS embed.FS

type StatsProvider func() map[string]any
type RecentProvider func(limit int) ([]domain.Message, error)

type PageData struct {
	Stats    map[string]any
	Messages []domain.Message
}

// StartDebugServer exposes a read-only operator view of the live registry
// and the message journal: an HTML page on /inspect and machine-readable
// figures on /stats.json for the inspect CLI. It has no effect on the chat
// protocol itself.
func StartDebugServer(log *slog.Logger, port, defaultLimit int,
	stats StatsProvider, recent RecentProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		messages, err := recent(limitParam(r, defaultLimit))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data := PageData{Stats: stats(), Messages: messages}
		if err := tmpl.Execute(w, data); err != nil {
			log.Warn("Inspect template failed", "err", err)
		}
	})

	mux.HandleFunc("/stats.json", func(w http.ResponseWriter, r *http.Request) {
		messages, err := recent(limitParam(r, defaultLimit))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stats":    stats(),
			"messages": messages,
		})
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info("Debug server started", "addr", addr, "endpoint", "/inspect")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug server stopped", "err", err)
		}
	}()
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
