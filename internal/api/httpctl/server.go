// Package httpctl exposes the player over a small REST control API.
package httpctl

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/app/player"
	"github.com/herald-audio/herald/internal/domain/media"
)

// StateResponse is the wire shape of GET /api/state.
type StateResponse struct {
	SessionID     string `json:"session_id"`
	Phase         string `json:"phase"`
	Title         string `json:"title,omitempty"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	Position      int    `json:"position,omitempty"`
	Total         int    `json:"total,omitempty"`
	LastError     string `json:"last_error,omitempty"`
}

// ItemResponse is the wire shape of one search result.
type ItemResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	DurationLabel string `json:"duration_label,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

// SearchResponse is the wire shape of GET /api/search.
type SearchResponse struct {
	Items []ItemResponse `json:"items"`
}

// SelectRequest is the body of POST /api/select.
type SelectRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PlaylistRequest is the body of POST /api/playlist.
type PlaylistRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the wire shape of any error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers binds the control API routes to a player and a catalog.
type Handlers struct {
	player      *player.Player
	catalog     catalog.Catalog
	searchLimit int
}

// NewRouter builds the echo router serving the control API.
func NewRouter(p *player.Player, cat catalog.Catalog, searchLimit int) *echo.Echo {
	h := &Handlers{player: p, catalog: cat, searchLimit: searchLimit}

	r := echo.New()
	r.HideBanner = true
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
	}))

	api := r.Group("/api")
	api.GET("/health", h.health)
	api.GET("/state", h.state)
	api.GET("/search", h.search)
	api.POST("/select", h.selectItem)
	api.POST("/playlist", h.selectPlaylist)
	api.POST("/next", h.next)
	api.POST("/stop", h.stop)

	return r
}

func (h *Handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handlers) state(c echo.Context) error {
	st := h.player.Status()
	resp := StateResponse{
		SessionID:     st.SessionID,
		Phase:         st.Phase.String(),
		Title:         st.Title,
		PlaylistTitle: st.PlaylistTitle,
		LastError:     st.LastError,
	}
	if st.Position != nil {
		resp.Position = st.Position.Index
		resp.Total = st.Position.Total
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing query parameter q"})
	}

	items, err := h.catalog.Search(context.Background(), query, h.searchLimit)
	if err != nil {
		return jsonError(c, err)
	}

	resp := SearchResponse{Items: make([]ItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:            item.ID,
			Title:         item.Title,
			DurationLabel: item.DurationLabel,
			ThumbnailURL:  item.ThumbnailURL,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) selectItem(c echo.Context) error {
	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
	}

	if err := h.player.PlayItem(media.Item{ID: req.ID, Title: req.Title}); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

func (h *Handlers) selectPlaylist(c echo.Context) error {
	var req PlaylistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
	}

	if err := h.player.PlayPlaylist(req.ID); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

func (h *Handlers) next(c echo.Context) error {
	if err := h.player.Next(); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted"})
}

func (h *Handlers) stop(c echo.Context) error {
	h.player.Stop()
	return c.JSON(http.StatusOK, echo.Map{"status": "stopped"})
}

// jsonError maps domain errors onto HTTP statuses.
func jsonError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, player.ErrInvalidSelection) || errors.Is(err, catalog.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, player.ErrNoPlaylist):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrRestricted):
		status = http.StatusForbidden
	case errors.Is(err, catalog.ErrUnavailable):
		status = http.StatusBadGateway
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
