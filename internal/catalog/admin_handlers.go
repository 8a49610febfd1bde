package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/common"
)

// AdminHandler wires operator-facing catalog endpoints.
type AdminHandler struct {
	Svc *Service
}

// SaveOptions serves PUT /admin/products/{id}/options. The response carries
// the variant preview derived from the submitted definitions; the stored
// variant set is replaced by the regeneration step.
func (h *AdminHandler) SaveOptions(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var payload struct {
		Options []OptionDefinition `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	preview, err := h.Svc.SaveOptions(r.Context(), productID, payload.Options)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"options":  payload.Options,
			"variants": preview,
		},
	})
}

// Regenerate serves POST /admin/products/{id}/variants/regenerate for a
// forced synchronous rebuild.
func (h *AdminHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Svc.RegenerateVariants(r.Context(), productID); err != nil {
		writeCatalogError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"regenerated": true}})
}
