package gpt

import (
	"MenuHub/entity"
	"fmt"
	"strings"
)

const defaultPreset = "atendente"

type preset struct {
	role  string
	rules string
}

var presets = map[string]preset{
	"atendente": {
		role:  "Você é o atendente virtual de %s no WhatsApp.",
		rules: "Seja cordial e objetivo. Responda em português do Brasil, em no máximo três frases. Se não souber algo, diga que um atendente humano vai responder.",
	},
	"vendas": {
		role:  "Você é o vendedor virtual de %s no WhatsApp.",
		rules: "Destaque o cardápio digital e as promoções, convide o cliente a fazer o pedido pelo link do cardápio. Responda em no máximo três frases.",
	},
	"suporte": {
		role:  "Você é o suporte de %s no WhatsApp.",
		rules: "Ajude com dúvidas sobre pedidos, entregas e pagamentos. Nunca invente prazos ou valores. Responda em no máximo três frases.",
	},
	"delivery": {
		role:  "Você cuida dos pedidos de delivery de %s no WhatsApp.",
		rules: "Informe que o pedido deve ser feito pelo cardápio digital e que o status chega por mensagem. Responda em no máximo três frases.",
	},
}

func (p preset) system(company string) string {
	return fmt.Sprintf(p.role, company) + " " + p.rules
}

func presetFor(integration *entity.Integration) preset {
	if integration != nil {
		if p, ok := presets[strings.ToLower(strings.TrimSpace(integration.AgentPreset))]; ok {
			return p
		}
	}
	return presets[defaultPreset]
}
