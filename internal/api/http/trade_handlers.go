package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appTrade "github.com/barterhub/barterhub/internal/application/trade"
	"github.com/barterhub/barterhub/internal/domain/trade"
)

type createOfferRequest struct {
	ReceiverID     uuid.UUID   `json:"receiver_id"`
	LocationID     *uuid.UUID  `json:"location"`
	Message        string      `json:"message"`
	ParentOfferID  *uuid.UUID  `json:"parent_offer"`
	InitiatorItems []uuid.UUID `json:"initiator_items"`
	ReceiverItems  []uuid.UUID `json:"receiver_items"`
}

type transitionRequest struct {
	Comment string `json:"comment"`
}

type transitionResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Offer   *appTrade.OfferDetail `json:"offer"`
}

func (s *Server) createOffer(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req createOfferRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	detail, err := s.tradeSvc.CreateOffer(r.Context(), auth.UserID, appTrade.CreateOfferInput{
		ReceiverID:     req.ReceiverID,
		LocationID:     req.LocationID,
		Message:        req.Message,
		ParentOfferID:  req.ParentOfferID,
		InitiatorItems: req.InitiatorItems,
		ReceiverItems:  req.ReceiverItems,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, detail)
}

func (s *Server) listOffers(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	offers, err := s.tradeSvc.ListOffers(r.Context(), auth.UserID, r.URL.Query().Get("type"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offers)
}

func (s *Server) getOffer(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	offerID, err := parseUUIDParam(r, "offerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid offer id")
		return
	}
	detail, err := s.tradeSvc.GetOffer(r.Context(), offerID, auth.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) offerHistory(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	offerID, err := parseUUIDParam(r, "offerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid offer id")
		return
	}
	entries, err := s.tradeSvc.History(r.Context(), offerID, auth.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) offerCounters(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	offerID, err := parseUUIDParam(r, "offerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid offer id")
		return
	}
	counters, err := s.tradeSvc.Counters(r.Context(), offerID, auth.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, counters)
}

func (s *Server) acceptOffer(w http.ResponseWriter, r *http.Request) {
	s.transitionOffer(w, r, trade.ActionAccept, "trade offer accepted")
}

func (s *Server) rejectOffer(w http.ResponseWriter, r *http.Request) {
	s.transitionOffer(w, r, trade.ActionReject, "trade offer rejected")
}

func (s *Server) cancelOffer(w http.ResponseWriter, r *http.Request) {
	s.transitionOffer(w, r, trade.ActionCancel, "trade offer cancelled")
}

func (s *Server) completeOffer(w http.ResponseWriter, r *http.Request) {
	s.transitionOffer(w, r, trade.ActionComplete, "trade offer completed")
}

func (s *Server) transitionOffer(w http.ResponseWriter, r *http.Request, action trade.Action, message string) {
	auth := authUserFromContext(r.Context())
	offerID, err := parseUUIDParam(r, "offerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid offer id")
		return
	}
	var req transitionRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}

	var detail *appTrade.OfferDetail
	switch action {
	case trade.ActionAccept:
		detail, err = s.tradeSvc.Accept(r.Context(), offerID, auth.UserID, req.Comment)
	case trade.ActionReject:
		detail, err = s.tradeSvc.Reject(r.Context(), offerID, auth.UserID, req.Comment)
	case trade.ActionCancel:
		detail, err = s.tradeSvc.Cancel(r.Context(), offerID, auth.UserID, req.Comment)
	case trade.ActionComplete:
		detail, err = s.tradeSvc.Complete(r.Context(), offerID, auth.UserID, req.Comment)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transitionResponse{
		Success: true,
		Message: message,
		Offer:   detail,
	})
}

func (s *Server) listStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.tradeSvc.ListStatuses(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}
