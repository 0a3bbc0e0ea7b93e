package models

// RelayResponse is the envelope returned for every relay request.
type RelayResponse struct {
	Success bool        `json:"success"`
	LeadID  int64       `json:"leadId,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MultiField is a CRM multi-value entry (phone, e-mail). The CRM expects
// upper-case wire keys.
type MultiField struct {
	Value     string `json:"VALUE"`
	ValueType string `json:"VALUE_TYPE"`
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Upstream  string `json:"upstream"`
}
