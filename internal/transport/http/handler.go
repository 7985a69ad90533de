package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/internal/invoke"
	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	"conduit/internal/tenant"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/platform/httputil"
	"conduit/pkg/platform/sentinel"
	"conduit/pkg/requestcontext"
)

// maxExecuteBodyBytes caps inbound invocation request bodies.
const maxExecuteBodyBytes = 1 << 20

// RegistrationReader is the registry surface the handler needs.
type RegistrationReader interface {
	FindByID(ctx context.Context, apiID domain.APIID) (*models.API, error)
	List(ctx context.Context) []*models.API
}

// TenantReader resolves tenant records for secret scoping.
type TenantReader interface {
	FindByID(ctx context.Context, tenantID domain.TenantID) (*tenant.Tenant, error)
}

// Invoker executes one operation of a registered API.
type Invoker interface {
	Execute(ctx context.Context, api *models.API, ep *models.Endpoint, params map[string]any, tc *secrets.TenantContext) (*invoke.Response, error)
}

// Handler is the thin HTTP layer over the invocation engine. It delegates to
// the engine without embedding business logic so transport concerns stay
// isolated.
type Handler struct {
	registrations RegistrationReader
	tenants       TenantReader
	invoker       Invoker
	logger        *slog.Logger
}

// NewHandler creates the transport handler.
func NewHandler(registrations RegistrationReader, tenants TenantReader, invoker Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		registrations: registrations,
		tenants:       tenants,
		invoker:       invoker,
		logger:        logger,
	}
}

// handleExecute serves POST /v1/apis/{apiID}/operations/{operationID}/execute.
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apiID, err := domain.ParseAPIID(chi.URLParam(r, "apiID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	operationID := chi.URLParam(r, "operationID")

	var req ExecuteRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxExecuteBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "could not read request body"))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body must be a JSON object"))
			return
		}
	}

	api, err := h.registrations.FindByID(ctx, apiID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "API is not registered"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed"))
		return
	}
	ep, err := api.Endpoint(operationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tc, err := h.tenantContext(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.invoker.Execute(ctx, api, ep, req.Parameters, tc)
	if err != nil {
		h.logger.WarnContext(ctx, "invocation failed",
			"api_id", apiID.String(),
			"operation_id", operationID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ExecuteResponse{
		StatusCode:   resp.StatusCode,
		Success:      resp.Success(),
		ReasonPhrase: resp.ReasonPhrase,
		Headers:      resp.Headers,
		Body:         resp.Body,
		Truncated:    resp.Truncated,
	})
}

// handleListAPIs serves GET /v1/apis. Auth configurations are deliberately
// absent from the response.
func (h *Handler) handleListAPIs(w http.ResponseWriter, r *http.Request) {
	apis := h.registrations.List(r.Context())
	summaries := make([]APISummary, 0, len(apis))
	for _, api := range apis {
		operations := make([]string, 0, len(api.Endpoints))
		for _, ep := range api.Endpoints {
			operations = append(operations, ep.OperationID)
		}
		summaries = append(summaries, APISummary{
			ID:         api.ID.String(),
			Name:       api.Name,
			BaseURL:    api.BaseURL,
			Operations: operations,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"apis": summaries})
}

// tenantContext builds the secret scope for the authenticated caller. An
// unknown tenant resolves vault-backed secrets only.
func (h *Handler) tenantContext(ctx context.Context) (*secrets.TenantContext, error) {
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		return nil, nil
	}
	t, err := h.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "tenant lookup failed")
	}
	return &secrets.TenantContext{TenantID: t.ID, EncryptionSalt: t.EncryptionSalt}, nil
}
