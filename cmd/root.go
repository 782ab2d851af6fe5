package cmd

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-screener"
)

type Config struct {
	ResumesDir string           `mapstructure:"resumes-dir"`
	Workers    int              `mapstructure:"workers"`
	Embedding  *EmbeddingConfig `mapstructure:"embedding"`
	Explain    *ExplainConfig   `mapstructure:"explain"`
	Serve      *ServeConfig     `mapstructure:"serve"`
}

type EmbeddingConfig struct {
	// Provider is one of openai, local, gemini. Empty picks the first usable one.
	Provider string                 `mapstructure:"provider"`
	// UseLocal is read leniently, see LocalEnabled.
	UseLocal string                 `mapstructure:"use-local"`
	OpenAI   *OpenAIEmbeddingConfig `mapstructure:"openai"`
	Local    *LocalEmbeddingConfig  `mapstructure:"local"`
	Gemini   *GeminiEmbeddingConfig `mapstructure:"gemini"`
}

// LocalEnabled reports whether use-local holds a true boolean ("true", "1", "t").
func (c *EmbeddingConfig) LocalEnabled() bool {
	enabled, err := strconv.ParseBool(strings.TrimSpace(c.UseLocal))
	return err == nil && enabled
}

type OpenAIEmbeddingConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type LocalEmbeddingConfig struct {
	URL     string `mapstructure:"url"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// GeminiEmbeddingConfig falls back to the explain.gemini key when it has
// none of its own.
type GeminiEmbeddingConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ExplainConfig struct {
	// Provider is one of openai, gemini, heuristic. Empty picks the first usable one.
	Provider string               `mapstructure:"provider"`
	OpenAI   *OpenAIExplainConfig `mapstructure:"openai"`
	Gemini   *GeminiExplainConfig `mapstructure:"gemini"`
}

type OpenAIExplainConfig struct {
	Model       string   `mapstructure:"model"`
	MaxTokens   int      `mapstructure:"max-tokens"`
	// Temperature left unset selects the default, 0 is honoured.
	Temperature *float32 `mapstructure:"temperature"`
}

type GeminiExplainConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServeConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int64  `mapstructure:"max-upload-mb"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener ranks PDF resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"embedding.openai.api-key":      "OPENAI_API_KEY",
	"embedding.openai.api-key-file": "OPENAI_API_KEY_FILE",
	"embedding.use-local":           "USE_LOCAL_EMBEDDINGS",
	"embedding.local.url":           "LOCAL_EMBEDDINGS_URL",
	"explain.gemini.api-key":        "GEMINI_API_KEY",
	"explain.gemini.api-key-file":   "GEMINI_API_KEY_FILE",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("resumes-dir", "resumes")
	viper.SetDefault("workers", 4)
	viper.SetDefault("explain.gemini.max-retries", 3)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.max-upload-mb", 20)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for rank and serve.
	if rankCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine, everything has a default or an env
	// binding. We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Embedding == nil {
		config.Embedding = &EmbeddingConfig{}
	}
	if config.Explain == nil {
		config.Explain = &ExplainConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}

	return config, nil
}
