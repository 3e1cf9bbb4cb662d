package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"gapaudit/internal/logger"
	"gapaudit/internal/metrics"
	"gapaudit/internal/pell"
	"gapaudit/internal/pipeline"
	"gapaudit/internal/research"
	"gapaudit/internal/research/gemini"
)

var pellPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptAssessments, PromptNarrative, PromptDumpResult, PromptExit},
}

var pellCmd = &cobra.Command{
	Use:   "pell",
	Short: "Classify offerings by funding-eligibility duration and score the readiness rubric",
	Run: func(cmd *cobra.Command, _ []string) {
		runPell(cmd)
	},
}

func init() {
	rootCmd.AddCommand(pellCmd)

	pellCmd.Flags().BoolP("auto-approve", "y", false, "print the category report and exit without prompting")
	pellCmd.Flags().Bool("skip-narrative", false, "skip the narrative synthesis stage")
	pellCmd.Flags().String("metrics-listen", "", "expose /metrics on this address for the run duration")
}

func runPell(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		zlog.Fatal("config is required")
	}

	zlog.Info("starting the gapaudit", zap.String("version", version))

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		zlog.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	geminiCfg := config.gemini()
	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, zlog)
	if err != nil {
		zlog.Fatal("creating gemini generator", zap.Error(err))
	}

	throttle := config.throttle()

	assembly, err := pell.New(pell.Deps{
		Identity:      config.identity(),
		Catalog:       gemini.NewCollector(generator, research.NewFetcher(), throttle, zlog),
		Criteria:      gemini.NewCriteriaResearcher(generator, throttle, zlog),
		Wages:         gemini.NewWageLookup(generator, throttle, zlog),
		Market:        gemini.NewMarketLookup(generator, throttle, zlog),
		Narrative:     gemini.NewSynthesizer(generator, throttle, zlog),
		Throttle:      throttle,
		BatchLimit:    config.marketLookupLimit(),
		SkipNarrative: flagBool(cmd, "skip-narrative"),
		Logger:        zlog,
	})
	if err != nil {
		zlog.Fatal("assembling the eligibility pipeline", zap.Error(err))
	}

	collector := metrics.NewCollector()
	assembly.Subscribe(collector.Subscriber())
	if addr := cmd.Flag("metrics-listen").Value.String(); addr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		collector.Serve(serveCtx, addr, zlog)
	}

	report, result := assembly.Run(ctx)
	collector.ObserveRun(result)

	if result.Status == pipeline.StatusError {
		filename, _ := result.DumpToTmpFile()
		zlog.Fatal("eligibility audit failed",
			zap.Any("errors", result.Errors),
			zap.String("result_file", filename),
		)
	}

	if result.Degraded {
		zlog.Warn("eligibility audit completed degraded", zap.Any("errors", result.Errors))
	}

	zlog.Info("eligibility audit complete",
		zap.String("run_id", result.RunID),
		zap.Int("programs", report.Classified.Len()),
		zap.Int("assessed", len(report.Assessments)),
		zap.Float64("duration_seconds", result.DurationSeconds),
	)

	autoApprove := flagBool(cmd, "auto-approve")

	action := PromptAssessments
	for {
		var err error
		if !autoApprove {
			_, action, err = pellPrompt.Run()
			if err != nil {
				zlog.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handlePellAction(action, report, result, zlog); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			zlog.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func handlePellAction(action string, report *pell.Report, result *pipeline.RunResult, zlog *zap.Logger) error {
	switch action {
	case PromptAssessments:
		pretty, _ := json.MarshalIndent(report.Classified.ByCategory(), "", "  ")
		zlog.Info(string(pretty), zap.Int("programs", report.Classified.Len()))
		return nil
	case PromptNarrative:
		if report.Narrative == "" {
			zlog.Info("no narrative available for this run")
			return nil
		}
		fmt.Println(report.Narrative)
		return nil
	case PromptDumpResult:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		zlog.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		zlog.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
