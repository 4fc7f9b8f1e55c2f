package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

func tenantRequest(t *testing.T, method, target, body string, tc domain.TenantContext) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(tenantContextKey, tc)
	return c, rec
}

func b3Tenant() domain.TenantContext {
	return domain.TenantContext{TenantID: "1", OrganizationSlug: "b3", OrganizationName: "B3 Community Services"}
}

func TestHandleCreateClient(t *testing.T) {
	var gotTenant domain.TenantContext
	srv := newTestServer(t, &mockAppService{
		createClientFn: func(_ context.Context, tc domain.TenantContext, client *domain.Client) error {
			gotTenant = tc
			client.ID = uuid.New()
			client.TenantID = tc.TenantID
			return nil
		},
	})

	c, rec := tenantRequest(t, http.MethodPost, "/api/clients",
		`{"first_name":"Jamie","last_name":"Okafor","email":"jamie@example.com"}`, b3Tenant())

	require.NoError(t, srv.handleCreateClient(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", gotTenant.TenantID)

	var client domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, "Jamie", client.FirstName)
	assert.NotEqual(t, uuid.Nil, client.ID)
}

func TestHandleCreateClient_ValidationErrorPropagates(t *testing.T) {
	srv := newTestServer(t, &mockAppService{
		createClientFn: func(_ context.Context, _ domain.TenantContext, _ *domain.Client) error {
			return apperrors.ValidationError("client needs a first or last name")
		},
	})

	c, _ := tenantRequest(t, http.MethodPost, "/api/clients", `{}`, b3Tenant())

	err := srv.handleCreateClient(c)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}

func TestHandleGetClient_NotFound(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	c, _ := tenantRequest(t, http.MethodGet, "/api/clients/x", "", b3Tenant())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := srv.handleGetClient(c)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.AsStructuredError(err).Type)
}

func TestHandleGetClient_InvalidUUID(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	c, _ := tenantRequest(t, http.MethodGet, "/api/clients/nope", "", b3Tenant())
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := srv.handleGetClient(c)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}

func TestHandleListClients_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	c, rec := tenantRequest(t, http.MethodGet, "/api/clients", "", b3Tenant())
	require.NoError(t, srv.handleListClients(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleRecordInteraction(t *testing.T) {
	clientID := uuid.New()
	srv := newTestServer(t, &mockAppService{
		recordInteractionFn: func(_ context.Context, tc domain.TenantContext, interaction *domain.Interaction) (domain.AnalysisResult, error) {
			interaction.ID = uuid.New()
			interaction.TenantID = tc.TenantID
			interaction.Sentiment = domain.SentimentPositive
			interaction.SentimentScore = 1
			return domain.AnalysisResult{Sentiment: domain.SentimentPositive, Score: 1}, nil
		},
	})

	c, rec := tenantRequest(t, http.MethodPost, "/api/clients/"+clientID.String()+"/interactions",
		`{"kind":"visit","notes":"good progress"}`, b3Tenant())
	c.SetParamNames("id")
	c.SetParamValues(clientID.String())

	require.NoError(t, srv.handleRecordInteraction(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp interactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.SentimentPositive, resp.Analysis.Sentiment)
	assert.Equal(t, clientID, resp.Interaction.ClientID)
}

func TestHandleRecordInteraction_UnknownClient(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	c, _ := tenantRequest(t, http.MethodPost, "/api/clients/x/interactions",
		`{"kind":"visit","notes":"hello"}`, b3Tenant())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := srv.handleRecordInteraction(c)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}
