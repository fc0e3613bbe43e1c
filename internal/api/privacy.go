package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/middleware"
	"github.com/scrinia/scrinia/internal/privacy"
)

type PrivacyHandler struct {
	db *database.DB
}

func NewPrivacyHandler(db *database.DB) *PrivacyHandler {
	return &PrivacyHandler{db: db}
}

type ProfileRequest struct {
	Name  string        `json:"name"`
	Rules []RuleRequest `json:"rules"`
}

type RuleRequest struct {
	Type        string `json:"type"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	IsActive    *bool  `json:"isActive"`
}

// validateRule rejects rules the redaction engine cannot act on. LITERAL and
// REGEX rules carry their own pattern; preset types may leave it blank.
func validateRule(req RuleRequest) string {
	switch privacy.RuleType(req.Type) {
	case privacy.TypeLiteral, privacy.TypeRegex:
		if req.Pattern == "" {
			return "Pattern is required for " + req.Type + " rules"
		}
	}
	return ""
}

func (h *PrivacyHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profiles, err := h.db.GetProfiles(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *PrivacyHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	for _, rule := range req.Rules {
		if msg := validateRule(rule); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
	}

	profile, err := h.db.CreateProfile(r.Context(), claims.UserID, req.Name)
	if err != nil {
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	for _, rule := range req.Rules {
		if _, err := h.db.AddRule(r.Context(), profile.ID, rule.Type, rule.Pattern, rule.Replacement); err != nil {
			http.Error(w, "Failed to create rules", http.StatusInternalServerError)
			return
		}
	}
	profile.RuleCount = len(req.Rules)

	writeJSON(w, http.StatusCreated, profile)
}

// UpdateProfile renames a profile and bulk-replaces its rule list. Rule IDs
// are not stable across an update.
func (h *PrivacyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	rules := make([]database.PrivacyRule, 0, len(req.Rules))
	for _, rule := range req.Rules {
		if msg := validateRule(rule); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		active := true
		if rule.IsActive != nil {
			active = *rule.IsActive
		}
		rules = append(rules, database.PrivacyRule{
			Type:        rule.Type,
			Pattern:     rule.Pattern,
			Replacement: rule.Replacement,
			IsActive:    active,
		})
	}

	if err := h.db.UpdateProfile(r.Context(), claims.UserID, id, req.Name, rules); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	profile, err := h.db.GetProfile(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}
	profile.RuleCount = len(rules)
	writeJSON(w, http.StatusOK, profile)
}

func (h *PrivacyHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.db.DeleteProfile(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Failed to delete profile", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PrivacyHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	// Ownership check before exposing rules.
	if _, err := h.db.GetProfile(r.Context(), claims.UserID, id); err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	rules, err := h.db.GetRules(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to list rules", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *PrivacyHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetProfile(r.Context(), claims.UserID, id); err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if msg := validateRule(req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	rule, err := h.db.AddRule(r.Context(), id, req.Type, req.Pattern, req.Replacement)
	if err != nil {
		http.Error(w, "Failed to create rule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *PrivacyHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteRule(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ToggleRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *PrivacyHandler) ToggleRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.db.ToggleRule(r.Context(), id, req.IsActive); err != nil {
		http.Error(w, "Failed to update rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
