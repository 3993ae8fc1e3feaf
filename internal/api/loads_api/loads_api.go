package loads_api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/DriverComm/internal/api/httpx"
	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/notify"
)

type LoadsService interface {
	List(ctx context.Context) ([]*models.Load, error)
	Get(ctx context.Context, id string) (*models.Load, error)
	Create(ctx context.Context, in models.LoadInput) (*models.Load, error)
	Patch(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error)
	Delete(ctx context.Context, id string) error
	SendMessage(ctx context.Context, msg models.DirectMessage) (notify.Outcome, error)
	ListMessages(ctx context.Context, loadID string) ([]*models.Message, error)
}

// LoadsAPI: REST-ручки грузов и сообщений.
type LoadsAPI struct {
	svc LoadsService
	now func() time.Time
}

func New(svc LoadsService) *LoadsAPI {
	return &LoadsAPI{svc: svc, now: time.Now}
}

func (a *LoadsAPI) Routes(r chi.Router) {
	r.Get("/api/ping", a.ping)

	r.Route("/api/loads", func(r chi.Router) {
		r.Get("/", a.listLoads)
		r.Post("/", a.createLoad)
		r.Get("/{id}", a.getLoad)
		r.Patch("/{id}", a.patchLoad)
		r.Delete("/{id}", a.deleteLoad)
	})

	r.Post("/api/message", a.sendMessage)
	r.Get("/api/messages", a.listMessages)
}

func (a *LoadsAPI) ping(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": a.now().UTC().Format(time.RFC3339),
	})
}

func (a *LoadsAPI) listLoads(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Load{}
	}
	httpx.WriteItems(w, items)
}

func (a *LoadsAPI) getLoad(w http.ResponseWriter, r *http.Request) {
	l, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteItem(w, http.StatusOK, l)
}

func (a *LoadsAPI) createLoad(w http.ResponseWriter, r *http.Request) {
	var in models.LoadInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	l, err := a.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteItem(w, http.StatusCreated, l)
}

func (a *LoadsAPI) patchLoad(w http.ResponseWriter, r *http.Request) {
	var p models.LoadPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	l, err := a.svc.Patch(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteItem(w, http.StatusOK, l)
}

func (a *LoadsAPI) deleteLoad(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}

func (a *LoadsAPI) sendMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.DirectMessage
	if err := httpx.DecodeJSON(r, &msg); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := a.svc.SendMessage(r.Context(), msg)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"sent":   out.OK,
		"twilio": out,
	})
}

func (a *LoadsAPI) listMessages(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListMessages(r.Context(), r.URL.Query().Get("loadId"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Message{}
	}
	httpx.WriteItems(w, items)
}
