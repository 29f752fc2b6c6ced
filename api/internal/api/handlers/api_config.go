package handlers

import (
	"log/slog"
	"net/http"

	"github.com/irgordon/keyward/api/internal/api/httputil"
	"github.com/irgordon/keyward/api/internal/core/domain"
	"github.com/irgordon/keyward/api/internal/core/services"
)

type APIConfigHandler struct {
	Service *services.CredentialService
	Logger  *slog.Logger
}

func NewAPIConfigHandler(service *services.CredentialService, logger *slog.Logger) *APIConfigHandler {
	return &APIConfigHandler{
		Service: service,
		Logger:  logger,
	}
}

// Get handles GET /api/auth/api-config
func (h *APIConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	// 🛡️ Only the masked form ever leaves the server
	cfg := h.Service.GetAPIConfig(r.Context(), user)
	httputil.WriteJSON(w, http.StatusOK, envelope{Data: cfg})
}

// Update handles PUT /api/auth/api-config
func (h *APIConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateAPIConfigRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	_, err := h.Service.UpdateAPIConfig(r.Context(), user, domain.APIConfigUpdate{
		AIModel:     req.AIModel,
		APIKey:      req.APIKey,
		APIBaseURL:  req.APIBaseURL,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope{Message: "API configuration updated"})
}

// TestAPI handles POST /api/auth/test-api. Only the key's format is checked;
// no request is made to the provider.
func (h *APIConfigHandler) TestAPI(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	var req TestAPIRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	if err := h.Service.TestAPIKey(req.APIKey); err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	model := req.AIModel
	if model == "" {
		model = domain.DefaultAIModel
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "API key format accepted",
		"model":   model,
	})
}
