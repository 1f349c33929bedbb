package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendoza-g/centavo/internal/classifier"
	"github.com/mendoza-g/centavo/internal/engine"
	"github.com/mendoza-g/centavo/internal/importer"
	"github.com/mendoza-g/centavo/internal/model"
	"github.com/mendoza-g/centavo/internal/parser"
	"github.com/mendoza-g/centavo/internal/rules"
	"github.com/mendoza-g/centavo/internal/sigcache"
)

func importCmd() *cobra.Command {
	var mode string
	var onlyMonth string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import and categorize a bank statement",
		Long: `Parses a CSV statement, categorizes each transaction, and persists the
results month by month. Months are independent: one month's failure does not
undo other months of the same run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], mode, onlyMonth)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "merge", "import mode: replace or merge")
	cmd.Flags().StringVar(&onlyMonth, "month", "", "restrict the import to one YYYY-MM month")

	return cmd
}

func runImport(cmd *cobra.Command, path, modeStr, onlyMonth string) error {
	ctx := cmd.Context()

	mode, err := model.ParseImportMode(modeStr)
	if err != nil {
		return err
	}
	if onlyMonth != "" {
		if _, _, err := model.ParseMonthID(onlyMonth); err != nil {
			return err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = file.Close() }()

	transactions, err := parser.Parse(file)
	if err != nil {
		return err
	}
	groups, months := parser.GroupByMonth(transactions)

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	cache := sigcache.New()
	cacheFile, err := cachePath()
	if err != nil {
		return err
	}
	if err := cache.Load(cacheFile); err != nil {
		return err
	}

	client, err := classifier.NewClient(classifierConfig())
	if err != nil {
		return err
	}
	batcher := classifier.NewBatchClassifier(client, classifierConfig(), slog.Default())

	orchestrator := engine.NewOrchestrator(cache, rules.NewMatcher(), batcher, slog.Default())
	processor := engine.NewProcessor(store, orchestrator, importer.NewReconciler(slog.Default()), slog.Default())

	var contexts []*model.MonthImportContext
	for _, monthID := range months {
		if onlyMonth != "" && monthID != onlyMonth {
			continue
		}
		mctx, err := model.NewMonthImportContext(monthID, mode, groups[monthID])
		if err != nil {
			return err
		}
		contexts = append(contexts, mctx)
	}
	if len(contexts) == 0 {
		return fmt.Errorf("no transactions to import from %s", path)
	}

	outcomes := processor.ProcessMonths(ctx, contexts)

	// Whatever the AI tier learned this run is worth keeping.
	if err := cache.Save(cacheFile); err != nil {
		slog.Warn("failed to save signature cache", "error", err)
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Printf("%s  FAILED: %v\n", outcome.MonthID, outcome.Err)
			continue
		}
		fmt.Printf("%s  categorized=%d skipped=%d low_confidence=%d score=%.1f\n",
			outcome.MonthID,
			outcome.Result.Categorized,
			outcome.Result.Skipped,
			outcome.Result.LowConfidence,
			outcome.Result.Score)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d months failed", failed, len(outcomes))
	}
	return nil
}
