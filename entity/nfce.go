package entity

import (
	"MenuHub/internal/lib/validate"
	"net/http"
	"time"
)

const (
	NfceActionIssue = "gerar-nfce"
	NfceActionQuery = "consultar-nfce"

	FiscalEnvProduction   = "producao"
	FiscalEnvHomologation = "homologacao"
)

type NfceRequest struct {
	Action    string         `json:"action" validate:"required,oneof=gerar-nfce consultar-nfce"`
	CompanyID string         `json:"company_id" validate:"required"`
	Ref       string         `json:"ref" validate:"required,max=60"`
	OrderID   string         `json:"pedido_id,omitempty"`
	Payload   map[string]any `json:"payload_focus_nfe,omitempty" validate:"required_if=Action gerar-nfce"`
}

func (n *NfceRequest) Bind(_ *http.Request) error {
	return validate.Struct(n)
}

// FiscalSettings holds a company's Focus NFe credentials.
type FiscalSettings struct {
	CompanyID   string `json:"company_id"`
	Token       string `json:"focus_token"`
	Environment string `json:"ambiente"`
	Enabled     bool   `json:"nfce_enabled"`
}

// NfceResult is the subset of the Focus NFe response the platform keeps.
type NfceResult struct {
	Ref          string         `json:"ref"`
	Status       string         `json:"status"`
	StatusSefaz  string         `json:"status_sefaz,omitempty"`
	MessageSefaz string         `json:"mensagem_sefaz,omitempty"`
	AccessKey    string         `json:"chave_nfe,omitempty"`
	Number       string         `json:"numero,omitempty"`
	Series       string         `json:"serie,omitempty"`
	DanfeUrl     string         `json:"caminho_danfe,omitempty"`
	XmlUrl       string         `json:"caminho_xml_nota_fiscal,omitempty"`
	QrCodeUrl    string         `json:"qrcode_url,omitempty"`
	FellBack     bool           `json:"fallback_consulta,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

type NfceRecord struct {
	CompanyID string    `json:"company_id"`
	OrderID   string    `json:"pedido_id,omitempty"`
	Ref       string    `json:"ref"`
	Status    string    `json:"status"`
	AccessKey string    `json:"chave_nfe,omitempty"`
	DanfeUrl  string    `json:"caminho_danfe,omitempty"`
	Message   string    `json:"mensagem_sefaz,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
