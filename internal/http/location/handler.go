package location

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexustechhub/mdts/internal/http/request"
	"github.com/nexustechhub/mdts/internal/http/respond"
	"github.com/nexustechhub/mdts/internal/location"
)

type Handler struct {
	svc *location.Service
}

func NewHandler(svc *location.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type locationResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(l *location.Location) locationResponse {
	return locationResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.List(r.Context())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	resp := make([]locationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toResponse(l)
	}

	respond.JSON(w, http.StatusOK, "Locations retrieved successfully", resp)
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, location.ErrNameMissing):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, location.ErrDuplicate):
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			respond.Internal(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, "Location created successfully", toResponse(l))
}
