package http

import (
	"net/http"
	"strings"

	"donoboard/internal/core"
)

type contributionRequest struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

type adminAmountRequest struct {
	TargetID    string `json:"target_id"`
	DisplayName string `json:"display_name"`
	Amount      int64  `json:"amount"`
}

type resetEntrantRequest struct {
	TargetID string `json:"target_id"`
}

// handleContribution is the ordinary (non-admin) path. The amount arrives as
// free chat text; if no positive amount parses out, nothing happens and the
// response still reports success with applied=false.
func (s *Server) handleContribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req contributionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ActorID) == "" {
		writeJSON(w, http.StatusBadRequest, OperationResult{Success: false, Error: "actor_id is required"})
		return
	}

	applied, err := s.ledger.RecordContribution(r.Context(), core.ContributionEvent{
		ActorID:       req.ActorID,
		DisplayName:   req.DisplayName,
		RawAmountText: req.Text,
	})
	if err != nil {
		writeOperationError(w, err)
		return
	}

	if applied {
		s.publisher.Refresh(r.Context())
	}

	writeJSON(w, http.StatusAccepted, struct {
		Applied bool `json:"applied"`
	}{Applied: applied})
}

func (s *Server) handleAdminAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req adminAmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TargetID) == "" {
		writeOperationError(w, core.ErrUnknownTarget)
		return
	}

	if err := s.ledger.AdminAdd(r.Context(), req.TargetID, req.DisplayName, req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}

	s.publisher.Refresh(r.Context())
	writeResult(w, "donation added")
}

func (s *Server) handleAdminSubtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req adminAmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TargetID) == "" {
		writeOperationError(w, core.ErrUnknownTarget)
		return
	}

	if err := s.ledger.AdminSubtract(r.Context(), req.TargetID, req.DisplayName, req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}

	s.publisher.Refresh(r.Context())
	writeResult(w, "donation subtracted")
}

func (s *Server) handleResetEntrant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req resetEntrantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TargetID) == "" {
		writeOperationError(w, core.ErrUnknownTarget)
		return
	}

	if err := s.ledger.ResetEntrant(r.Context(), req.TargetID); err != nil {
		writeOperationError(w, err)
		return
	}

	s.publisher.Refresh(r.Context())
	writeResult(w, "entrant reset")
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := s.ledger.ResetAll(r.Context()); err != nil {
		writeOperationError(w, err)
		return
	}

	s.publisher.Refresh(r.Context())
	writeResult(w, "all donation boards reset")
}

// handleAllTimeBoard backs the public "show leaderboard" command: it always
// renders the current board, bypassing the change-detection cache.
func (s *Server) handleAllTimeBoard(w http.ResponseWriter, r *http.Request) {
	s.handleBoard(w, r, core.AllTimeBoard)
}

func (s *Server) handleMonthlyBoard(w http.ResponseWriter, r *http.Request) {
	s.handleBoard(w, r, core.MonthlyBoard)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, kind core.SnapshotKind) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	snap, err := s.publisher.ForceView(r.Context(), kind)
	if err != nil {
		writeOperationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
