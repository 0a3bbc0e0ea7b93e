package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero", float64(0), false},
		{"number", float64(1), true},
		{"empty object", map[string]interface{}{}, true},
		{"object", map[string]interface{}{"k": "v"}, true},
		{"empty list", []interface{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTruthy(tt.value))
		})
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]interface{}
		missing string
	}{
		{
			name: "valid",
			doc: map[string]interface{}{
				"contact": map[string]interface{}{},
				"call":    map[string]interface{}{},
			},
		},
		{
			name:    "missing contact",
			doc:     map[string]interface{}{"call": map[string]interface{}{}},
			missing: "contact",
		},
		{
			name:    "missing call",
			doc:     map[string]interface{}{"contact": map[string]interface{}{}},
			missing: "call",
		},
		{
			name:    "null contact",
			doc:     map[string]interface{}{"contact": nil, "call": map[string]interface{}{}},
			missing: "contact",
		},
		{
			name:    "empty document",
			doc:     map[string]interface{}{},
			missing: "contact",
		},
		{
			name:    "nil document",
			doc:     nil,
			missing: "contact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.doc)
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestRelayResponse_SuccessShape(t *testing.T) {
	body, err := json.Marshal(RelayResponse{
		Success: true,
		LeadID:  123,
		Data:    map[string]interface{}{"result": float64(123)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"leadId":123,"data":{"result":123}}`, string(body))
}

func TestRelayResponse_FailureOmitsEmpty(t *testing.T) {
	body, err := json.Marshal(RelayResponse{Success: false, Error: "missing required field"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"missing required field"}`, string(body))
}

func TestMultiField_WireKeys(t *testing.T) {
	body, err := json.Marshal([]MultiField{{Value: "79001234567", ValueType: "WORK"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"VALUE":"79001234567","VALUE_TYPE":"WORK"}]`, string(body))
}
