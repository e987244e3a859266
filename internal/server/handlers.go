package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/usnaveen/paperlink/internal/code"
	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/store"
)

type createLinkRequest struct {
	URL string `json:"url"`
}

type recoverRequest struct {
	Text string `json:"text"`
}

type liveRecoverRequest struct {
	Code string `json:"code"`
}

type linkResponse struct {
	Code          string     `json:"code"`
	URL           string     `json:"url"`
	ShortURL      string     `json:"short_url,omitempty"`
	ScanCount     int64      `json:"scan_count"`
	CreatedAt     time.Time  `json:"created_at"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
}

type recoverResponse struct {
	Code     string `json:"code"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url,omitempty"`
	Method   string `json:"method"`
	Distance int    `json:"distance"`
	Scanned  string `json:"scanned,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	link, err := s.svc.Shorten(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, links.ErrInvalidURL) {
			s.respondError(w, http.StatusBadRequest, "url must be a valid http or https URL")
			return
		}
		s.internalError(w, err, "create link")
		return
	}
	s.respondJSON(w, http.StatusCreated, s.linkResponse(link))
}

func (s *server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	c := code.Normalize(chi.URLParam(r, "code"))

	link, err := s.svc.Get(r.Context(), c)
	if err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			s.respondError(w, http.StatusNotFound, "unknown code")
			return
		}
		s.internalError(w, err, "get link")
		return
	}
	s.respondJSON(w, http.StatusOK, s.linkResponse(link))
}

func (s *server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	res, err := s.svc.Resolve(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, links.ErrNoMatch) {
			s.respondError(w, http.StatusNotFound, "no match")
			return
		}
		s.internalError(w, err, "recover")
		return
	}
	s.respondJSON(w, http.StatusOK, s.recoverResponse(res))
}

func (s *server) handleRecoverLive(w http.ResponseWriter, r *http.Request) {
	var req liveRecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		s.respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	res, err := s.svc.ResolveLive(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, links.ErrNoMatch) {
			s.respondError(w, http.StatusNotFound, "no match")
			return
		}
		s.internalError(w, err, "recover live")
		return
	}
	s.respondJSON(w, http.StatusOK, s.recoverResponse(res))
}

func (s *server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	c := code.Normalize(chi.URLParam(r, "code"))
	if !code.IsValid(c) {
		s.respondError(w, http.StatusNotFound, "unknown code")
		return
	}

	link, err := s.svc.Visit(r.Context(), c)
	if err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			s.respondError(w, http.StatusNotFound, "unknown code")
			return
		}
		s.internalError(w, err, "redirect")
		return
	}
	http.Redirect(w, r, link.URL, http.StatusFound)
}

func (s *server) linkResponse(link *store.Link) linkResponse {
	return linkResponse{
		Code:          link.Code,
		URL:           link.URL,
		ShortURL:      s.shortURL(link.Code),
		ScanCount:     link.ScanCount,
		CreatedAt:     link.CreatedAt,
		LastScannedAt: link.LastScannedAt,
	}
}

func (s *server) recoverResponse(res *links.Resolution) recoverResponse {
	return recoverResponse{
		Code:     res.Code,
		URL:      res.Link.URL,
		ShortURL: s.shortURL(res.Code),
		Method:   res.Method,
		Distance: res.Distance,
		Scanned:  res.Scanned,
	}
}

func (s *server) shortURL(c string) string {
	if s.cfg.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + c
}

func (s *server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

func (s *server) internalError(w http.ResponseWriter, err error, op string) {
	s.log.Error().Err(err).Str("op", op).Msg("Request failed")
	s.respondError(w, http.StatusInternalServerError, "internal error")
}
