package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appItem "github.com/barterhub/barterhub/internal/application/item"
)

type createItemRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	LocationID     *uuid.UUID `json:"location"`
	EstimatedValue *float64   `json:"estimated_value"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	it, err := s.itemSvc.CreateItem(r.Context(), auth.UserID, appItem.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		LocationID:     req.LocationID,
		EstimatedValue: req.EstimatedValue,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	items, err := s.itemSvc.ListMine(r.Context(), auth.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseUUIDParam(r, "itemId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid item id")
		return
	}
	it, err := s.itemSvc.GetItem(r.Context(), itemID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	itemID, err := parseUUIDParam(r, "itemId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid item id")
		return
	}
	if err := s.itemSvc.DeleteItem(r.Context(), itemID, auth.UserID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
