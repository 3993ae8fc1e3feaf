package directory_api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/DriverComm/internal/api/httpx"
	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/directory"
)

// DirectoryAPI отдаёт CRUD справочника: партнёры (они же parties), локации,
// получатели уведомлений, мерчанты и диспетчеры.
type DirectoryAPI struct {
	svc *directory.Service
}

func New(svc *directory.Service) *DirectoryAPI {
	return &DirectoryAPI{svc: svc}
}

func (a *DirectoryAPI) Routes(r chi.Router) {
	partners := func(r chi.Router) {
		r.Get("/", a.listPartners)
		r.Post("/", a.createPartner)
		r.Get("/{id}", withID(a.getPartner))
		r.Patch("/{id}", withID(a.updatePartner))
		r.Delete("/{id}", withID(a.deletePartner))
		r.Get("/{id}/locations", withID(a.listPartnerLocations))
		r.Post("/{id}/locations", withID(a.createPartnerLocation))
	}
	r.Route("/api/parties", partners)
	r.Route("/api/partners", partners)

	r.Route("/api/locations", func(r chi.Router) {
		r.Get("/", a.listLocations)
		r.Post("/", a.createLocation)
		r.Get("/{id}", withID(a.getLocation))
		r.Patch("/{id}", withID(a.updateLocation))
		r.Delete("/{id}", withID(a.deleteLocation))
		r.Get("/{id}/recipients", withID(a.listLocationRecipients))
		r.Post("/{id}/recipients", withID(a.createLocationRecipient))
	})

	r.Route("/api/recipients", func(r chi.Router) {
		r.Get("/", a.listRecipients)
		r.Post("/", a.createRecipient)
		r.Get("/{id}", withID(a.getRecipient))
		r.Patch("/{id}", withID(a.updateRecipient))
		r.Delete("/{id}", withID(a.deleteRecipient))
	})

	r.Route("/api/merchants", a.contacts(models.ContactMerchants))
	r.Route("/api/dispatchers", a.contacts(models.ContactDispatchers))
}

type idHandler func(w http.ResponseWriter, r *http.Request, id int64)

func withID(h idHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		h(w, r, id)
	}
}

// queryID: пустой параметр = 0, сервис сам ответит "... required".
func queryID(r *http.Request, names ...string) (int64, error) {
	for _, name := range names {
		if raw := r.URL.Query().Get(name); raw != "" {
			return httpx.ParseID(raw, name)
		}
	}
	return 0, nil
}

func reply[T any](w http.ResponseWriter, r *http.Request, status int, item T, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteItem(w, status, item)
}

func replyList[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	httpx.WriteItems(w, items)
}

func replyDeleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteOK(w)
}

// ---- partners ----

func (a *DirectoryAPI) listPartners(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListPartners(r.Context(), r.URL.Query().Get("kind"))
	replyList(w, r, items, err)
}

func (a *DirectoryAPI) getPartner(w http.ResponseWriter, r *http.Request, id int64) {
	p, err := a.svc.GetPartner(r.Context(), id)
	reply(w, r, http.StatusOK, p, err)
}

func (a *DirectoryAPI) createPartner(w http.ResponseWriter, r *http.Request) {
	var f models.PartnerFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := a.svc.CreatePartner(r.Context(), f)
	reply(w, r, http.StatusCreated, p, err)
}

func (a *DirectoryAPI) updatePartner(w http.ResponseWriter, r *http.Request, id int64) {
	var f models.PartnerFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := a.svc.UpdatePartner(r.Context(), id, f)
	reply(w, r, http.StatusOK, p, err)
}

func (a *DirectoryAPI) deletePartner(w http.ResponseWriter, r *http.Request, id int64) {
	replyDeleted(w, r, a.svc.DeletePartner(r.Context(), id))
}

func (a *DirectoryAPI) listPartnerLocations(w http.ResponseWriter, r *http.Request, id int64) {
	items, err := a.svc.ListLocations(r.Context(), id)
	replyList(w, r, items, err)
}

func (a *DirectoryAPI) createPartnerLocation(w http.ResponseWriter, r *http.Request, id int64) {
	var f models.LocationFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f.PartnerID = &id
	l, err := a.svc.CreateLocation(r.Context(), f)
	reply(w, r, http.StatusCreated, l, err)
}

// ---- locations ----

func (a *DirectoryAPI) listLocations(w http.ResponseWriter, r *http.Request) {
	partnerID, err := queryID(r, "partyId", "partnerId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := a.svc.ListLocations(r.Context(), partnerID)
	replyList(w, r, items, err)
}

func (a *DirectoryAPI) getLocation(w http.ResponseWriter, r *http.Request, id int64) {
	l, err := a.svc.GetLocation(r.Context(), id)
	reply(w, r, http.StatusOK, l, err)
}

func (a *DirectoryAPI) createLocation(w http.ResponseWriter, r *http.Request) {
	var f struct {
		models.LocationFields
		PartyID *int64 `json:"partyId"`
	}
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if f.PartnerID == nil {
		f.PartnerID = f.PartyID
	}
	l, err := a.svc.CreateLocation(r.Context(), f.LocationFields)
	reply(w, r, http.StatusCreated, l, err)
}

func (a *DirectoryAPI) updateLocation(w http.ResponseWriter, r *http.Request, id int64) {
	var f models.LocationFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	l, err := a.svc.UpdateLocation(r.Context(), id, f)
	reply(w, r, http.StatusOK, l, err)
}

func (a *DirectoryAPI) deleteLocation(w http.ResponseWriter, r *http.Request, id int64) {
	replyDeleted(w, r, a.svc.DeleteLocation(r.Context(), id))
}

func (a *DirectoryAPI) listLocationRecipients(w http.ResponseWriter, r *http.Request, id int64) {
	items, err := a.svc.ListRecipients(r.Context(), id)
	replyList(w, r, items, err)
}

func (a *DirectoryAPI) createLocationRecipient(w http.ResponseWriter, r *http.Request, id int64) {
	var f models.RecipientFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	f.LocationID = &id
	rc, err := a.svc.CreateRecipient(r.Context(), f)
	reply(w, r, http.StatusCreated, rc, err)
}

// ---- recipients ----

func (a *DirectoryAPI) listRecipients(w http.ResponseWriter, r *http.Request) {
	locationID, err := queryID(r, "locationId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := a.svc.ListRecipients(r.Context(), locationID)
	replyList(w, r, items, err)
}

func (a *DirectoryAPI) getRecipient(w http.ResponseWriter, r *http.Request, id int64) {
	rc, err := a.svc.GetRecipient(r.Context(), id)
	reply(w, r, http.StatusOK, rc, err)
}

func (a *DirectoryAPI) createRecipient(w http.ResponseWriter, r *http.Request) {
	var f models.RecipientFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rc, err := a.svc.CreateRecipient(r.Context(), f)
	reply(w, r, http.StatusCreated, rc, err)
}

func (a *DirectoryAPI) updateRecipient(w http.ResponseWriter, r *http.Request, id int64) {
	var f models.RecipientFields
	if err := httpx.DecodeJSON(r, &f); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	rc, err := a.svc.UpdateRecipient(r.Context(), id, f)
	reply(w, r, http.StatusOK, rc, err)
}

func (a *DirectoryAPI) deleteRecipient(w http.ResponseWriter, r *http.Request, id int64) {
	replyDeleted(w, r, a.svc.DeleteRecipient(r.Context(), id))
}

// ---- merchants / dispatchers ----

func (a *DirectoryAPI) contacts(table models.ContactTable) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			items, err := a.svc.ListContacts(r.Context(), table)
			replyList(w, r, items, err)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var f models.ContactFields
			if err := httpx.DecodeJSON(r, &f); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			c, err := a.svc.CreateContact(r.Context(), table, f)
			reply(w, r, http.StatusCreated, c, err)
		})
		r.Get("/{id}", withID(func(w http.ResponseWriter, r *http.Request, id int64) {
			c, err := a.svc.GetContact(r.Context(), table, id)
			reply(w, r, http.StatusOK, c, err)
		}))
		r.Patch("/{id}", withID(func(w http.ResponseWriter, r *http.Request, id int64) {
			var f models.ContactFields
			if err := httpx.DecodeJSON(r, &f); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			c, err := a.svc.UpdateContact(r.Context(), table, id, f)
			reply(w, r, http.StatusOK, c, err)
		}))
		r.Delete("/{id}", withID(func(w http.ResponseWriter, r *http.Request, id int64) {
			replyDeleted(w, r, a.svc.DeleteContact(r.Context(), table, id))
		}))
	}
}
