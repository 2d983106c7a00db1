package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

// PreferencesHandler manages stored user preferences. Registering
// preferences is also what enrolls a user in the periodic scans.
type PreferencesHandler struct {
	store domain.PreferenceStore
}

func NewPreferencesHandler(store domain.PreferenceStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// HandleGet returns the user's stored preferences.
// GET /api/v1/preferences/:user_id
func (h *PreferencesHandler) HandleGet(c *gin.Context) {
	prefs, err := h.store.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// HandlePut stores the user's preferences after validation.
// PUT /api/v1/preferences/:user_id
func (h *PreferencesHandler) HandlePut(c *gin.Context) {
	var prefs domain.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	prefs.UserID = c.Param("user_id")

	if err := validatePreferences(&prefs); err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.store.Set(c.Request.Context(), &prefs); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func validatePreferences(prefs *domain.UserPreferences) error {
	if !prefs.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidInput, prefs.Frequency)
	}
	if !prefs.PreferredTone.Valid() {
		return fmt.Errorf("%w: unknown tone %q", domain.ErrInvalidInput, prefs.PreferredTone)
	}
	if prefs.StaleDaysThreshold < 0 || prefs.DeadlineWarningDays < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative", domain.ErrInvalidInput)
	}
	if _, _, err := prefs.QuietHours.Minutes(); err != nil {
		return err
	}
	if prefs.Timezone != "" {
		if _, err := time.LoadLocation(prefs.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", domain.ErrInvalidInput, prefs.Timezone)
		}
	}
	for _, typ := range prefs.EnabledTypes {
		if !typ.Valid() {
			return fmt.Errorf("%w: unknown notification type %q", domain.ErrInvalidInput, typ)
		}
	}
	return nil
}
