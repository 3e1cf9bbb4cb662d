package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gapaudit/internal/match"
	"gapaudit/internal/opportunity"
	"gapaudit/internal/research"
	"gapaudit/internal/secrets"
)

const (
	app = "gapaudit"
)

type Config struct {
	Institution  string `mapstructure:"institution"`
	Location     string `mapstructure:"location"`
	Jurisdiction string `mapstructure:"jurisdiction"`
	CatalogURL   string `mapstructure:"catalog-url"`

	Match    *match.Config            `mapstructure:"match"`
	Revenue  *opportunity.ModelConfig `mapstructure:"revenue"`
	Research *ResearchConfig          `mapstructure:"research"`
	AI       *AIConfig                `mapstructure:"ai"`
}

type ResearchConfig struct {
	CallDelaySeconds   int `mapstructure:"call-delay-seconds"`
	CallTimeoutSeconds int `mapstructure:"call-timeout-seconds"`
	MarketLookupLimit  int `mapstructure:"market-lookup-limit"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "gapaudit audits a training catalog against licensing mandates and funding-eligibility rules",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is gapaudit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the audit commands. If there is no config, we can skip initialization
	if auditCmd.CalledAs() == "" && pellCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) identity() research.Identity {
	return research.Identity{
		Institution:  c.Institution,
		Location:     c.Location,
		Jurisdiction: c.Jurisdiction,
		CatalogURL:   c.CatalogURL,
	}
}

func (c *Config) gemini() GeminiConfig {
	if c.AI == nil || c.AI.Gemini == nil {
		return GeminiConfig{}
	}
	return *c.AI.Gemini
}

func (c *Config) throttle() *research.Throttle {
	delay := time.Duration(-1)
	timeout := time.Duration(0)
	if c.Research != nil {
		if c.Research.CallDelaySeconds > 0 {
			delay = time.Duration(c.Research.CallDelaySeconds) * time.Second
		}
		if c.Research.CallTimeoutSeconds > 0 {
			timeout = time.Duration(c.Research.CallTimeoutSeconds) * time.Second
		}
	}
	return research.NewThrottle(delay, timeout)
}

func (c *Config) marketLookupLimit() int {
	if c.Research != nil && c.Research.MarketLookupLimit > 0 {
		return c.Research.MarketLookupLimit
	}
	return research.DefaultBatchLimit
}

func (c *Config) matchConfig() match.Config {
	if c.Match == nil {
		return match.Config{}
	}
	return *c.Match
}

func (c *Config) modelConfig() opportunity.ModelConfig {
	if c.Revenue == nil {
		return opportunity.ModelConfig{}
	}
	return *c.Revenue
}

func resolveAPIKey(config *Config) (string, error) {
	gemini := config.gemini()

	keyFile := gemini.APIKeyFile
	if keyFile == "" {
		keyFile = viper.GetString("ai.gemini.api-key-file")
	}

	return secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
}
