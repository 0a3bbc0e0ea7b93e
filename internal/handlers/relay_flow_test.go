package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitrix-lead-relay/internal/mapping"
	"bitrix-lead-relay/internal/services/bitrix"
	"bitrix-lead-relay/internal/utils"
)

// TestRelayFlow drives the whole pipeline against a stub CRM server:
// a signed call-center event goes in, a crm.lead.add call comes out.
func TestRelayFlow(t *testing.T) {
	var (
		upstreamPath string
		upstreamBody map[string]interface{}
	)
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&upstreamBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": 4021, "time": {"duration": 0.41}}`))
	}))
	defer stub.Close()

	client := bitrix.NewClient(stub.URL+"/rest/12/abc123", 5*time.Second)
	handler := NewWebhookHandler(mapping.LeadTable(), client, "relay-secret", nil)

	event := map[string]interface{}{
		"contact": map[string]interface{}{
			"name":    "Irina Petrova",
			"phone":   "8 (900) 555-01-02",
			"email":   "irina@example.com",
			"city":    "Kazan",
			"comment": "prefers evening calls",
		},
		"call": map[string]interface{}{
			"scenario_name": "Mortgage follow-up",
			"started_at":    "2024-05-10T12:34:56Z",
			"duration":      125,
			"tags":          []string{"warm", "mortgage"},
			"recording_url": "https://cc.example.com/rec/77",
			"result": map[string]interface{}{
				"result_name": "Interested",
				"comment":     "asked for a callback",
			},
			"operator":   map[string]interface{}{"name": "Oleg"},
			"agreements": map[string]interface{}{"client_name": "Irina"},
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(HeaderSignature, utils.SignBody("relay-secret", body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool  `json:"success"`
		LeadID  int64 `json:"leadId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(4021), resp.LeadID)

	assert.Equal(t, "/rest/12/abc123/crm.lead.add", upstreamPath)

	fields, ok := upstreamBody["fields"].(map[string]interface{})
	require.True(t, ok, "upstream body must wrap the record in a fields object")

	assert.Equal(t, "Call-center lead: Irina", fields["TITLE"])
	assert.Equal(t, "Irina", fields["NAME"])
	assert.Equal(t, "Kazan", fields["ADDRESS_CITY"])
	assert.Equal(t, "WEBHOOK", fields["SOURCE_ID"])
	assert.Equal(t, "Mortgage follow-up", fields["SOURCE_DESCRIPTION"])

	phones, ok := fields["PHONE"].([]interface{})
	require.True(t, ok)
	require.Len(t, phones, 1)
	assert.Equal(t, map[string]interface{}{"VALUE": "79005550102", "VALUE_TYPE": "WORK"}, phones[0])

	emails, ok := fields["EMAIL"].([]interface{})
	require.True(t, ok)
	require.Len(t, emails, 1)
	assert.Equal(t, map[string]interface{}{"VALUE": "irina@example.com", "VALUE_TYPE": "WORK"}, emails[0])

	expectedComments := "Result: Interested\n" +
		"Comment: asked for a callback\n" +
		"Scenario: Mortgage follow-up\n" +
		"Operator: Oleg\n" +
		"Started: 10.05.2024 15:34\n" +
		"Duration: 2:05\n" +
		"Tags: warm, mortgage\n" +
		"Recording: https://cc.example.com/rec/77\n" +
		"Contact comment: prefers evening calls"
	assert.Equal(t, expectedComments, fields["COMMENTS"])
}

// TestRelayFlow_UpstreamRejection covers the CRM reporting an application
// error inside an HTTP 200 body.
func TestRelayFlow_UpstreamRejection(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "ERROR_CORE", "error_description": "Field TITLE is required"}`))
	}))
	defer stub.Close()

	client := bitrix.NewClient(stub.URL+"/rest/12/abc123", 5*time.Second)
	handler := NewWebhookHandler(mapping.LeadTable(), client, "", nil)

	rec := postWebhook(handler, validEvent, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Field TITLE is required")
	assert.NotContains(t, rec.Body.String(), "abc123", "the webhook token must never surface in responses")
}
