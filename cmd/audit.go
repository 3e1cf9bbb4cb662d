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

	"gapaudit/internal/audit"
	"gapaudit/internal/logger"
	"gapaudit/internal/metrics"
	"gapaudit/internal/pipeline"
	"gapaudit/internal/research"
	"gapaudit/internal/research/gemini"
)

const (
	PromptExit        = "Exit"
	PromptNarrative   = "Print narrative report"
	PromptTierReport  = "Report by priority tier"
	PromptDumpResult  = "Dump result to file"
	PromptDumpGaps    = "Dump gap opportunities to file"
	PromptAssessments = "Report by eligibility category"
)

var errExit = errors.New("exit requested")

var auditPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptTierReport, PromptNarrative, PromptDumpGaps, PromptDumpResult, PromptExit},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the catalog against jurisdiction licensing and training mandates",
	Run: func(cmd *cobra.Command, _ []string) {
		runAudit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().BoolP("auto-approve", "y", false, "print the tier report and exit without prompting")
	auditCmd.Flags().Bool("skip-narrative", false, "skip the narrative synthesis stage")
	auditCmd.Flags().String("metrics-listen", "", "expose /metrics on this address for the run duration")

	viper.BindPFlag("metrics-listen", auditCmd.Flags().Lookup("metrics-listen"))
}

func runAudit(cmd *cobra.Command) {
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

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

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

	assembly, err := audit.New(audit.Deps{
		Identity:      config.identity(),
		Catalog:       gemini.NewCollector(generator, research.NewFetcher(), throttle, zlog),
		Requirements:  gemini.NewResearcher(generator, throttle, zlog),
		Market:        gemini.NewMarketLookup(generator, throttle, zlog),
		Narrative:     gemini.NewSynthesizer(generator, throttle, zlog),
		Throttle:      throttle,
		MatchConfig:   config.matchConfig(),
		ModelConfig:   config.modelConfig(),
		BatchLimit:    config.marketLookupLimit(),
		SkipNarrative: flagBool(cmd, "skip-narrative"),
		Logger:        zlog,
	})
	if err != nil {
		zlog.Fatal("assembling the audit pipeline", zap.Error(err))
	}

	collector := metrics.NewCollector()
	assembly.Subscribe(collector.Subscriber())
	if addr := viper.GetString("metrics-listen"); addr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		collector.Serve(serveCtx, addr, zlog)
	}

	report, result := assembly.Run(ctx)
	collector.ObserveRun(result)

	if result.Status == pipeline.StatusError {
		filename, _ := result.DumpToTmpFile()
		zlog.Fatal("audit failed",
			zap.Any("errors", result.Errors),
			zap.String("result_file", filename),
		)
	}

	if result.Degraded {
		zlog.Warn("audit completed degraded", zap.Any("errors", result.Errors))
	}

	zlog.Info("audit complete",
		zap.String("run_id", result.RunID),
		zap.Int("gaps", report.Gaps.Len()),
		zap.Int("total_annual_revenue", report.TotalAnnualRevenue),
		zap.Float64("duration_seconds", result.DurationSeconds),
	)

	if report.Gaps.Len() == 0 {
		zlog.Info("exiting", zap.String("reason", "no gaps found, catalog already covers every mandate"))
		return
	}

	autoApprove := flagBool(cmd, "auto-approve")

	action := PromptTierReport
	for {
		var err error
		if !autoApprove {
			_, action, err = auditPrompt.Run()
			if err != nil {
				zlog.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAuditAction(action, report, result, zlog); err != nil {
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

func handleAuditAction(action string, report *audit.Report, result *pipeline.RunResult, zlog *zap.Logger) error {
	switch action {
	case PromptTierReport:
		pretty, _ := json.MarshalIndent(report.Gaps.ByTier(), "", "  ")
		zlog.Info(string(pretty),
			zap.Int("gaps", report.Gaps.Len()),
			zap.Int("total_annual_revenue", report.TotalAnnualRevenue),
		)
		return nil
	case PromptNarrative:
		if report.Narrative == "" {
			zlog.Info("no narrative available for this run")
			return nil
		}
		fmt.Println(report.Narrative)
		return nil
	case PromptDumpGaps:
		filename, err := report.Gaps.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump gaps to file: %w", err)
		}
		zlog.Info("dumping gaps to file", zap.String("filename", filename))
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

func flagBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && flag.Value.String() == "true"
}
