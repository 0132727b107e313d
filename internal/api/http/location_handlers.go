package httpapi

import (
	"net/http"

	appLocation "github.com/barterhub/barterhub/internal/application/location"
)

type createLocationRequest struct {
	Title      string  `json:"title"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Region     *string `json:"region"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country"`
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req createLocationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	loc, err := s.locationSvc.CreateLocation(r.Context(), auth.UserID, appLocation.CreateInput{
		Title:      req.Title,
		Address:    req.Address,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, loc)
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	locations, err := s.locationSvc.ListMine(r.Context(), auth.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, locations)
}
