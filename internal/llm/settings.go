package llm

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Vendor names a hosted model API.
type Vendor string

const (
	VendorAnthropic  Vendor = "anthropic"
	VendorOpenAI     Vendor = "openai"
	VendorGemini     Vendor = "gemini"
	VendorOpenRouter Vendor = "openrouter"
	// VendorScripted replays canned replies. Used in tests and demos.
	VendorScripted Vendor = "scripted"
)

// Vendors lists the selectable vendors in discovery order.
var Vendors = []Vendor{VendorAnthropic, VendorOpenAI, VendorGemini, VendorOpenRouter, VendorScripted}

// keyEnv is the vendor's own API key variable, consulted when the cadence
// config carries no key.
var keyEnv = map[Vendor]string{
	VendorAnthropic:  "ANTHROPIC_API_KEY",
	VendorOpenAI:     "OPENAI_API_KEY",
	VendorGemini:     "GEMINI_API_KEY",
	VendorOpenRouter: "OPENROUTER_API_KEY",
}

// Half-life estimates are short structured replies, so each vendor defaults
// to its small model.
var defaultModel = map[Vendor]string{
	VendorAnthropic:  "claude-haiku-4-5",
	VendorOpenAI:     "gpt-4.1-mini",
	VendorGemini:     "gemini-2.5-flash",
	VendorOpenRouter: "google/gemini-2.5-flash",
	VendorScripted:   "scripted",
}

// Settings selects and configures one vendor. An empty Vendor means
// "discover from the environment".
type Settings struct {
	Vendor  Vendor        `yaml:"vendor,omitempty" mapstructure:"vendor"`
	Model   string        `yaml:"model,omitempty" mapstructure:"model"`
	APIKey  string        `yaml:"-" mapstructure:"api_key" masq:"secret"`
	BaseURL string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retry   Backoff       `yaml:"retry" mapstructure:"retry"`
}

func DefaultSettings() Settings {
	return Settings{
		Timeout: 30 * time.Second,
		Retry:   DefaultBackoff(),
	}
}

// ModelName is Model, or the vendor default when Model is empty.
func (s Settings) ModelName() string {
	if s.Model != "" {
		return s.Model
	}
	return defaultModel[s.Vendor]
}

// Resolve fills in what the config left out from the vendors' own
// environment variables. With no vendor configured, the first vendor whose
// key is set wins. ok is false when nothing is configured at all.
func (s Settings) Resolve(getenv func(string) string) (resolved Settings, ok bool, err error) {
	if s.Vendor == "" {
		for _, v := range Vendors {
			if env, has := keyEnv[v]; has && getenv(env) != "" {
				s.Vendor = v
				break
			}
		}
		if s.Vendor == "" {
			return s, false, nil
		}
	}
	if s.APIKey == "" {
		if env, has := keyEnv[s.Vendor]; has {
			s.APIKey = getenv(env)
		}
	}
	if err := s.Validate(); err != nil {
		return s, false, err
	}
	return s, true, nil
}

func (s Settings) Validate() error {
	if !slices.Contains(Vendors, s.Vendor) {
		return goerr.New("unknown LLM vendor", goerr.V("vendor", string(s.Vendor)))
	}
	if s.Vendor != VendorScripted && s.APIKey == "" {
		return goerr.New("LLM API key is not set; set llm.api_key, CADENCE_LLM_API_KEY or "+keyEnv[s.Vendor],
			goerr.V("vendor", string(s.Vendor)))
	}
	if s.Timeout < 0 {
		return goerr.New("llm.timeout must not be negative")
	}
	return s.Retry.Validate()
}
