package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

// Config is the immutable configuration snapshot for a running process.
// It is loaded once and passed explicitly into the components that need it;
// nothing reads process-wide state during request handling.
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	Region string `envconfig:"AWS_REGION" default:"eu-west-2"`

	ModelSiteNav          string `envconfig:"MODEL_SITE_NAV" default:"amazon.nova-lite-v1:0"`
	ModelCourseRec        string `envconfig:"MODEL_COURSE_REC" default:"amazon.nova-pro-v1:0"`
	ModelSectionExplainer string `envconfig:"MODEL_SECTION_EXPLAINER" default:"amazon.nova-pro-v1:0"`
	ModelProgress         string `envconfig:"MODEL_PROGRESS" default:"amazon.nova-pro-v1:0"`
	ModelGlossary         string `envconfig:"MODEL_GLOSSARY" default:"amazon.nova-lite-v1:0"`
	ModelOther            string `envconfig:"MODEL_OTHER" default:"amazon.nova-lite-v1:0"`
	ModelFallback         string `envconfig:"MODEL_FALLBACK" default:"us.anthropic.claude-haiku-4-5-20251001-v1:0"`

	MaxTokensDefault   int    `envconfig:"MAX_OUTPUT_TOKENS_DEFAULT" default:"600"`
	GenerationProvider string `envconfig:"GENERATION_PROVIDER" default:"stub"`
	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`

	APIAuthEnabled bool     `envconfig:"API_AUTH_ENABLED" default:"false"`
	APIKeys        []string `envconfig:"API_KEYS"`

	RetrievalMinCitations int    `envconfig:"RETRIEVAL_MIN_CITATIONS" default:"1"`
	RetrievalProvider     string `envconfig:"RETRIEVAL_PROVIDER" default:"local"`
	RetrievalTopK         int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`

	RetrievalCorpusPath string `envconfig:"RETRIEVAL_CORPUS_PATH" default:"data/corpus.json"`

	RetrievalCatalogAPIURL   string `envconfig:"RETRIEVAL_CATALOG_API_URL"`
	RetrievalCatalogAPIToken string `envconfig:"RETRIEVAL_CATALOG_API_TOKEN"`

	RetrievalMoodleBaseURL        string `envconfig:"RETRIEVAL_MOODLE_BASE_URL"`
	RetrievalMoodleToken          string `envconfig:"RETRIEVAL_MOODLE_TOKEN"`
	RetrievalMoodleForwardedHost  string `envconfig:"RETRIEVAL_MOODLE_FORWARDED_HOST"`
	RetrievalMoodleTimeoutMS      int    `envconfig:"RETRIEVAL_MOODLE_TIMEOUT_MS" default:"15000"`
	RetrievalMoodleMaxConcurrency int    `envconfig:"RETRIEVAL_MOODLE_MAX_CONCURRENCY" default:"1"`

	DepartmentBoostEnabled bool `envconfig:"DEPARTMENT_BOOST_ENABLED" default:"true"`
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("NOVALXP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or exits the process.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// ModelFor returns the generation model for an intent, defaulting to the
// model configured for "other".
func (c *Config) ModelFor(intent domain.Intent) string {
	switch intent {
	case domain.IntentSiteNavigation:
		return c.ModelSiteNav
	case domain.IntentCourseRecommendation:
		return c.ModelCourseRec
	case domain.IntentSectionExplainer:
		return c.ModelSectionExplainer
	case domain.IntentProgressCompletion:
		return c.ModelProgress
	case domain.IntentGlossaryPolicy:
		return c.ModelGlossary
	default:
		return c.ModelOther
	}
}

// MoodleTimeout returns the per-call timeout for Moodle web service requests.
func (c *Config) MoodleTimeout() time.Duration {
	if c.RetrievalMoodleTimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RetrievalMoodleTimeoutMS) * time.Millisecond
}

// HasCatalogAPI reports whether the catalog API provider is configured.
func (c *Config) HasCatalogAPI() bool {
	return c.RetrievalCatalogAPIURL != ""
}

// HasMoodle reports whether the Moodle web service provider is configured.
func (c *Config) HasMoodle() bool {
	return c.RetrievalMoodleBaseURL != "" && c.RetrievalMoodleToken != ""
}
