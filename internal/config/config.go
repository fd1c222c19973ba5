package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	AutoReplyOff   = "off"
	AutoReplyDraft = "draft"
	AutoReplySend  = "send"
)

type Config struct {
	Env      string `yaml:"env" env:"APP_ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"MenuHubBot"`
		Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	} `yaml:"telegram"`
	Supabase struct {
		Url        string `yaml:"url" env:"SUPABASE_URL" env-default:""`
		ServiceKey string `yaml:"service_key" env:"SUPABASE_SERVICE_ROLE_KEY" env-default:""`
	} `yaml:"supabase"`
	OpenAI struct {
		ApiKey      string        `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		BaseUrl     string        `yaml:"base_url" env-default:""`
		Model       string        `yaml:"model" env-default:"gpt-4o-mini"`
		Temperature float32       `yaml:"temperature" env-default:"0.7"`
		Timeout     time.Duration `yaml:"timeout" env-default:"20s"`
	} `yaml:"openai"`
	AutoReply struct {
		Mode           string `yaml:"mode" env:"AUTO_REPLY_MODE" env-default:"draft"`
		WelcomeMessage string `yaml:"welcome_message" env-default:""`
	} `yaml:"auto_reply"`
	MegaApi struct {
		BaseUrl string        `yaml:"base_url" env:"MEGAAPI_BASE_URL" env-default:""`
		Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	} `yaml:"megaapi"`
	FocusNfe struct {
		ProductionUrl   string        `yaml:"production_url" env-default:"https://api.focusnfe.com.br"`
		HomologationUrl string        `yaml:"homologation_url" env-default:"https://homologacao.focusnfe.com.br"`
		Timeout         time.Duration `yaml:"timeout" env-default:"30s"`
	} `yaml:"focus_nfe"`
	Resend struct {
		ApiKey          string `yaml:"api_key" env:"RESEND_API_KEY" env-default:""`
		From            string `yaml:"from" env:"RESEND_FROM" env-default:"MenuHub <no-reply@menuhub.app>"`
		ResetRedirect   string `yaml:"reset_redirect" env-default:""`
		ConfirmRedirect string `yaml:"confirm_redirect" env-default:""`
	} `yaml:"resend"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"menuhub"`
	} `yaml:"mongo"`
	Webhook struct {
		RatePerMinute int  `yaml:"rate_per_minute" env-default:"120"`
		Burst         int  `yaml:"burst" env-default:"20"`
		Archive       bool `yaml:"archive" env-default:"true"`
	} `yaml:"webhook"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env:"PORT" env-default:"9100"`
		ApiKey string `yaml:"key" env:"API_KEY" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("loading .env: %v", err)
		}
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = instance.validate(); err != nil {
			log.Fatal(err)
		}
	})
	return instance
}

func (c *Config) validate() error {
	switch c.AutoReply.Mode {
	case AutoReplyOff, AutoReplyDraft, AutoReplySend:
	default:
		return fmt.Errorf("auto_reply.mode must be one of off, draft, send; got %q", c.AutoReply.Mode)
	}
	if c.Supabase.Url == "" || c.Supabase.ServiceKey == "" {
		return fmt.Errorf("supabase url and service key are required")
	}
	return nil
}
