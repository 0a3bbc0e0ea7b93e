package mapping

// LeadTable returns the built-in mapping table for CRM lead creation. The
// table is the single source of truth for which lead fields the relay
// submits; swap it via MAPPING_FILE without touching code.
func LeadTable() Table {
	return Table{
		{Target: "TITLE", Source: SourceMultiple, Transform: LeadTitle},
		{Target: "NAME", Source: "call.agreements.client_name", Transform: TrimName},
		{Target: "PHONE", Source: "contact.phone", Transform: PhoneWork},
		{Target: "EMAIL", Source: "contact.email", Transform: EmailWork},
		{Target: "ADDRESS_CITY", Source: "contact.city"},
		{Target: "SOURCE_ID", Source: SourceStatic, Value: "WEBHOOK"},
		{Target: "SOURCE_DESCRIPTION", Source: "call.scenario_name"},
		{Target: "COMMENTS", Source: SourceMultiple, Transform: CallComments},
	}
}
