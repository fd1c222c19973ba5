package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundPayloadInstanceKey(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"snake case", `{"instance_key":"abc"}`, "abc"},
		{"camel case", `{"instanceKey":"abc"}`, "abc"},
		{"nested message data", `{"messageData":{"instance_key":"abc"}}`, "abc"},
		{"instance object", `{"instance":{"key":"abc"}}`, "abc"},
		{"blank value falls through", `{"instance_key":"  ","instanceKey":"def"}`, "def"},
		{"missing", `{"key":{"remoteJid":"5511999999999@s.whatsapp.net"}}`, ""},
		{"wrong type", `{"instance_key":{"id":1}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseInboundPayload([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.InstanceKey())
		})
	}
}

func TestParseInboundPayloadRejectsInvalidBodies(t *testing.T) {
	for _, body := range []string{``, `not json`, `null`, `[1,2]`} {
		_, err := ParseInboundPayload([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidPayload, "body %q", body)
	}
}

func TestInboundPayloadMessage(t *testing.T) {
	t.Run("top level shape", func(t *testing.T) {
		p, err := ParseInboundPayload([]byte(`{
			"instance_key":"k",
			"key":{"remoteJid":"5511988887777@s.whatsapp.net","fromMe":false,"id":"ABC123"},
			"pushName":"Maria",
			"message":{"conversation":"Oi, tudo bem?"}
		}`))
		require.NoError(t, err)

		msg := p.Message()
		assert.Equal(t, "ABC123", msg.ID)
		assert.Equal(t, "5511988887777@s.whatsapp.net", msg.RemoteJid)
		assert.Equal(t, "5511988887777", msg.Phone)
		assert.Equal(t, "Maria", msg.ContactName)
		assert.Equal(t, "Oi, tudo bem?", msg.Text)
		assert.Equal(t, "text", msg.Type)
		assert.False(t, msg.FromMe)
		assert.False(t, msg.IsGroup())
	})

	t.Run("message data shape with extended text", func(t *testing.T) {
		p, err := ParseInboundPayload([]byte(`{
			"messageData":{
				"instance_key":"k",
				"key":{"remoteJid":"5521977776666@s.whatsapp.net","fromMe":true},
				"pushName":"Loja",
				"messageType":"extendedTextMessage",
				"message":{"extendedTextMessage":{"text":"Pedido saiu"}}
			}
		}`))
		require.NoError(t, err)

		msg := p.Message()
		assert.Equal(t, "5521977776666", msg.Phone)
		assert.Equal(t, "Pedido saiu", msg.Text)
		assert.Equal(t, "extendedTextMessage", msg.Type)
		assert.True(t, msg.FromMe)
	})

	t.Run("is_from_me flag and caption", func(t *testing.T) {
		p, err := ParseInboundPayload([]byte(`{
			"is_from_me":true,
			"key":{"remoteJid":"5511@s.whatsapp.net"},
			"message":{"imageMessage":{"caption":"foto do cardapio"}}
		}`))
		require.NoError(t, err)

		msg := p.Message()
		assert.True(t, msg.FromMe)
		assert.Equal(t, "foto do cardapio", msg.Text)
	})

	t.Run("group chat", func(t *testing.T) {
		p, err := ParseInboundPayload([]byte(`{"key":{"remoteJid":"1203630@g.us"}}`))
		require.NoError(t, err)
		assert.True(t, p.Message().IsGroup())
	})
}

func TestPhoneFromJid(t *testing.T) {
	assert.Equal(t, "5511999999999", PhoneFromJid("5511999999999@s.whatsapp.net"))
	assert.Equal(t, "5511999999999", PhoneFromJid("5511999999999:12@s.whatsapp.net"))
	assert.Equal(t, "", PhoneFromJid(""))
}
