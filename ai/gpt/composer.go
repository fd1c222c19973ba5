package gpt

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const maxReplyTokens = 350

var citationRe = regexp.MustCompile(`【\d+:\d+†[^】]+】`)

// Composer writes WhatsApp replies with the Chat Completions API.
type Composer struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *slog.Logger
}

func NewComposer(conf *config.Config, logger *slog.Logger) *Composer {
	if conf.OpenAI.ApiKey == "" {
		return nil
	}
	clientConf := openai.DefaultConfig(conf.OpenAI.ApiKey)
	if conf.OpenAI.BaseUrl != "" {
		clientConf.BaseURL = conf.OpenAI.BaseUrl
	}
	return &Composer{
		client:      openai.NewClientWithConfig(clientConf),
		model:       conf.OpenAI.Model,
		temperature: conf.OpenAI.Temperature,
		timeout:     conf.OpenAI.Timeout,
		log:         logger.With(sl.Module("composer")),
	}
}

// Welcome greets a first-time sender.
func (c *Composer) Welcome(ctx context.Context, in entity.ReplyInput) (entity.AiReply, error) {
	preset := presetFor(in.Integration)
	user := fmt.Sprintf("Primeira mensagem do cliente %s: %q\nResponda com uma saudação curta de boas-vindas e ofereça ajuda.",
		contactOrDefault(in.ContactName), in.Text)
	return c.complete(ctx, in.Integration, preset.system(companyName(in.Integration)), user)
}

// Reply answers any later message.
func (c *Composer) Reply(ctx context.Context, in entity.ReplyInput) (entity.AiReply, error) {
	preset := presetFor(in.Integration)
	user := fmt.Sprintf("Mensagem do cliente %s: %q", contactOrDefault(in.ContactName), in.Text)
	return c.complete(ctx, in.Integration, preset.system(companyName(in.Integration)), user)
}

func (c *Composer) complete(ctx context.Context, integration *entity.Integration, system, user string) (entity.AiReply, error) {
	model, temperature := c.settings(integration)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxReplyTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return entity.AiReply{Model: model}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return entity.AiReply{Model: model}, errors.New("chat completion: no choices")
	}

	text := strings.TrimSpace(citationRe.ReplaceAllString(resp.Choices[0].Message.Content, ""))
	if text == "" {
		return entity.AiReply{Model: model}, errors.New("chat completion: empty content")
	}

	c.log.With(
		slog.String("model", model),
		slog.Int("tokens", resp.Usage.TotalTokens),
	).Debug("reply composed")

	return entity.AiReply{Text: text, Model: model}, nil
}

// settings prefers the integration's model and temperature over the service defaults.
func (c *Composer) settings(integration *entity.Integration) (string, float32) {
	model, temperature := c.model, c.temperature
	if integration == nil {
		return model, temperature
	}
	if integration.Model != "" {
		model = integration.Model
	}
	if integration.Temperature != nil && *integration.Temperature >= 0 && *integration.Temperature <= 2 {
		temperature = *integration.Temperature
	}
	// the request omits a zero temperature and the API would fall back to 1
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return model, temperature
}

func companyName(integration *entity.Integration) string {
	if integration == nil || integration.CompanyName == "" {
		return "nossa loja"
	}
	return integration.CompanyName
}

func contactOrDefault(name string) string {
	if name == "" {
		return "(sem nome)"
	}
	return name
}
