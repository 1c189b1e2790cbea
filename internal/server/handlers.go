package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/receipt-matcher/internal/transfer"
)

// Message types accepted by the /message dispatch.
const (
	MsgGetHideMatched = "getHideMatched"
	MsgSetHideMatched = "setHideMatched"
	MsgGetDebugInfo   = "getDebugInfo"
	MsgGetPairings    = "getPairings"
	MsgOpenDictionary = "openDictionary"
	MsgImportPairs    = "importPairs"
)

// Message is the typed request envelope for /message. Unknown types are
// rejected up front by validation rather than falling through the switch.
type Message struct {
	Type  string          `json:"type" validate:"required,oneof=getHideMatched setHideMatched getDebugInfo getPairings openDictionary importPairs"`
	Value *bool           `json:"value,omitempty"`
	Pairs json.RawMessage `json:"pairs,omitempty"`
}

// registerRequest is the payload of /register, posted by the injected
// page script when the user confirms a registration button.
type registerRequest struct {
	Desc string `json:"desc" validate:"required"`
	Attr string `json:"attr" validate:"required"`
}

// handleMessage dispatches a typed message to the matching operation.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid message body: %v", err))
		return
	}
	if err := s.validate.Struct(msg); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid message: %v", err))
		return
	}

	switch msg.Type {
	case MsgGetHideMatched:
		s.jsonResponse(w, http.StatusOK, map[string]any{"hideMatched": s.session.HideMatched()})

	case MsgSetHideMatched:
		if msg.Value == nil {
			s.errorResponse(w, http.StatusBadRequest, "setHideMatched requires a 'value' field")
			return
		}
		if err := s.session.SetHideMatched(*msg.Value); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to persist setting: %v", err))
			return
		}
		s.rescan()
		s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "hideMatched": *msg.Value})

	case MsgGetDebugInfo:
		s.jsonResponse(w, http.StatusOK, map[string]any{"debug": s.session.Debug()})

	case MsgGetPairings:
		s.jsonResponse(w, http.StatusOK, map[string]any{"pairings": s.session.Pairings()})

	case MsgOpenDictionary:
		s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "dictionary": s.dict.GetAll()})

	case MsgImportPairs:
		if len(msg.Pairs) == 0 {
			s.errorResponse(w, http.StatusBadRequest, "importPairs requires a 'pairs' field")
			return
		}
		pairs, err := transfer.ParseImport(msg.Pairs)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		added, err := s.dict.AddMany(pairs)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to save imported pairs: %v", err))
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "added": added})
	}
}

// handleRegister adds one description/attachment pair to the dictionary.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid register body: %v", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "register requires 'desc' and 'attr'")
		return
	}

	if err := s.dict.AddOne(req.Desc, req.Attr); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to save pair: %v", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true})
}

// handleListDictionary returns all registered pairs keyed by normalized pair key.
func (s *Server) handleListDictionary(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"dictionary": s.dict.GetAll()})
}

// handleRemoveDictionary deletes one pair by its normalized key.
func (s *Server) handleRemoveDictionary(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		s.errorResponse(w, http.StatusBadRequest, "dictionary key is required")
		return
	}
	if err := s.dict.Remove(key); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to remove pair: %v", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true})
}

// handlePage serves the current annotated document with the matcher assets
// injected, so a browser pointed at the agent sees the live verdicts.
func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	html := s.session.DocumentHTML()
	if html == "" {
		s.errorResponse(w, http.StatusServiceUnavailable, "no page snapshot loaded yet")
		return
	}

	tags := `<link rel="stylesheet" href="/assets/matcher.css"><script defer src="/assets/matcher.js"></script>`
	if strings.Contains(html, "</head>") {
		html = strings.Replace(html, "</head>", tags+"</head>", 1)
	} else {
		html = tags + html
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
