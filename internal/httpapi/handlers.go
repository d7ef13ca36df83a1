package httpapi

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"fpndb/internal/model"
	"fpndb/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	count, err := s.store.CountApprovedRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to count records")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"approved_count": count})
}

// generateVerificationCode returns an unguessable url-safe one-time
// code (8 random bytes).
func generateVerificationCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "post email, name and optional institution to receive a verification code",
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid form")
			return
		}

		email := r.FormValue("email")
		name := r.FormValue("name")
		institution := r.FormValue("institution")
		if email == "" || name == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "email and name are required")
			return
		}

		code, err := generateVerificationCode()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to generate verification code")
			return
		}

		created, err := s.store.CreateVerification(r.Context(), model.VerificationAttempt{
			Email:       email,
			Name:        name,
			Institution: institution,
			Code:        code,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		s.gateway.VerificationRequested(r.Context(), created.Email, created.Name, created.Code)

		http.Redirect(w, r, "/verify", http.StatusSeeOther)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "post email and code to verify your account",
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid form")
			return
		}

		email := r.FormValue("email")
		code := r.FormValue("code")
		if email == "" || code == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "email and code are required")
			return
		}

		user, err := s.store.ConfirmVerification(r.Context(), email, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "invalid_verification", "invalid email or verification code")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal", "failed to confirm verification")
			return
		}

		token, err := s.sessions.issue(user.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to establish session")
			return
		}
		s.sessions.setCookie(w, token)

		http.Redirect(w, r, "/submit", http.StatusSeeOther)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	email := s.sessionEmail(r)
	if email == "" {
		// Not signed in: back to the start of the handshake.
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"submitter": email})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid form")
			return
		}

		rec, err := s.store.CreateRecord(r.Context(), model.Record{
			Submitter:      email,
			Algorithm:      r.FormValue("algorithm"),
			Sequence:       r.FormValue("sequence"),
			Allele:         r.FormValue("allele"),
			ResultType:     model.ResultType(r.FormValue("result_type")),
			ExpectedResult: r.FormValue("expected_result"),
			ActualResult:   r.FormValue("actual_result"),
			Description:    r.FormValue("description"),
		})
		if err != nil {
			if errors.Is(err, store.ErrNotVerified) {
				writeError(w, http.StatusForbidden, "not_verified", "submitter is not a verified user")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		s.gateway.RecordSubmitted(r.Context(), rec)

		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	q := r.URL.Query()
	filter := store.RecordFilter{
		Search:     q.Get("q"),
		Algorithm:  q.Get("algorithm"),
		ResultType: model.ResultType(q.Get("result_type")),
	}

	records, err := s.store.ListApprovedRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to list records")
		return
	}
	if records == nil {
		records = []model.Record{}
	}

	algorithms, err := s.store.ListApprovedAlgorithms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to list algorithms")
		return
	}
	if algorithms == nil {
		algorithms = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":      records,
		"algorithms":   algorithms,
		"result_types": model.ResultTypes(),
	})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rec, err := s.store.GetApprovedRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "record not found or not approved")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to get record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// handleApprove flips a record to approved. The link arrives via the
// chat notification and carries no credential; anyone holding a record
// id can approve it.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	if _, err := s.store.ApproveRecord(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to approve record")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	s.sessions.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
