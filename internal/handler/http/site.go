package http

import (
	"net/http"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SiteHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	RotateQRToken(w http.ResponseWriter, r *http.Request)
}

type siteHandlerImpl struct {
	siteService site.SiteService
}

func NewSiteHandler(siteService site.SiteService) SiteHandler {
	return &siteHandlerImpl{siteService: siteService}
}

func (h *siteHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req site.CreateSiteRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}

	resp, err := h.siteService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "Site created", resp)
}

func (h *siteHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.siteService.List(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

func (h *siteHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.siteService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "Site deleted", nil)
}

func (h *siteHandlerImpl) RotateQRToken(w http.ResponseWriter, r *http.Request) {
	resp, err := h.siteService.RotateQRToken(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "QR code rotated", resp)
}
