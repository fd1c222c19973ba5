package entity

// Integration is one company's WhatsApp gateway binding, looked up by instance key.
type Integration struct {
	ID             string   `json:"id,omitempty"`
	CompanyID      string   `json:"company_id"`
	CompanyName    string   `json:"company_name,omitempty"`
	InstanceKey    string   `json:"instance_key"`
	Token          string   `json:"token"`
	AgentPreset    string   `json:"ia_agent_preset,omitempty"`
	Model          string   `json:"ia_model,omitempty"`
	Temperature    *float32 `json:"ia_temperature,omitempty"`
	WelcomeMessage string   `json:"welcome_message,omitempty"`
}
