package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"tracescope/internal/advisor"
	"tracescope/internal/config"
	"tracescope/internal/investigate"
	"tracescope/internal/locator"
	"tracescope/internal/mcp"
	"tracescope/internal/report"
	"tracescope/internal/storage"
	"tracescope/internal/tracker"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	rootCmd = &cobra.Command{
		Use:   "tracescope",
		Short: "Stack-trace investigator for local codebases",
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tracescope.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "tracescope.db", "Path to the investigation archive (SQLite)")

	investigateCmd.Flags().String("trace-file", "", "Read the stack trace from a file instead of stdin")
	investigateCmd.Flags().Int("issue", 0, "Fetch the stack trace from a tracker issue")
	investigateCmd.Flags().Int("radius", 0, "Context lines on each side of a frame's target line")
	investigateCmd.Flags().Int("frames", 0, "How many of the top frames to analyze")
	investigateCmd.Flags().Bool("ticket", false, "File a follow-up ticket containing the report")
	investigateCmd.Flags().Bool("no-save", false, "Do not archive the investigation")

	scanCmd.Flags().Int("max-files", 0, "Cap on the number of files analyzed")
	historyCmd.Flags().Int("limit", 20, "How many archived investigations to list")
	issuesCmd.Flags().Int("limit", 0, "How many open issues to list")

	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func initStore() *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open investigation archive: %v", err)
	}
	return store
}

func initTracker(cfg *config.Config) *tracker.Client {
	if cfg.Tracker.Owner == "" || cfg.Tracker.Repo == "" {
		return nil
	}
	return tracker.NewClient(cfg.Tracker.BaseURL, cfg.Tracker.Owner, cfg.Tracker.Repo, cfg.Tracker.Token)
}

var investigateCmd = &cobra.Command{
	Use:   "investigate [root]",
	Short: "Parse a stack trace and cross-reference it against the codebase",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		if _, err := os.Stat(root); err != nil {
			log.Fatalf("Codebase root %s does not exist: %v", root, err)
		}

		traceText := readTraceText(ctx, cmd, cfg)

		radius, _ := cmd.Flags().GetInt("radius")
		frames, _ := cmd.Flags().GetInt("frames")
		if radius == 0 {
			radius = cfg.Limits.ContextRadius
		}
		if frames == 0 {
			frames = cfg.Limits.MaxFrames
		}

		inv, err := investigate.Run(ctx, traceText, root, investigate.Options{
			Radius:    radius,
			MaxFrames: frames,
			GitInfo:   true,
		})
		if err != nil {
			log.Fatalf("Investigation failed: %v", err)
		}

		rendered := report.Investigation(inv)

		if adv := initAdvisor(ctx, cfg); adv != nil && inv.Parsed() {
			fmt.Fprintln(os.Stderr, "🧠 Asking the advisor for a root-cause narrative...")
			narrative, err := adv.ExplainFailure(ctx, traceText, rendered)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Advisor unavailable, keeping the heuristic report: %v\n", err)
			} else {
				rendered = report.WithNarrative(rendered, narrative)
			}
		}

		fmt.Print(rendered)

		if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
			store := initStore()
			defer store.Close()
			if rec, err := store.SaveInvestigation(ctx, inv, rendered); err == nil {
				fmt.Fprintf(os.Stderr, "💾 Archived as %s\n", rec.ID)
			}
		}

		if ticket, _ := cmd.Flags().GetBool("ticket"); ticket {
			tc := initTracker(cfg)
			if tc == nil {
				log.Fatalf("Cannot file a ticket: no tracker configured")
			}
			// When the trace came from an issue, attach the report there
			// instead of opening a duplicate.
			if number, _ := cmd.Flags().GetInt("issue"); number > 0 {
				comment, err := tc.AddComment(ctx, number, rendered)
				if err != nil {
					log.Fatalf("Failed to comment on issue #%d: %v", number, err)
				}
				fmt.Fprintf(os.Stderr, "🎫 Posted report on issue #%d: %s\n", number, comment.URL)
			} else {
				issue, err := tc.CreateIssue(ctx, "Error investigation report", rendered)
				if err != nil {
					log.Fatalf("Failed to create ticket: %v", err)
				}
				fmt.Fprintf(os.Stderr, "🎫 Filed ticket #%d: %s\n", issue.Number, issue.URL)
			}
		}
	},
}

// readTraceText picks the trace source: tracker issue, file, or stdin.
func readTraceText(ctx context.Context, cmd *cobra.Command, cfg *config.Config) string {
	if number, _ := cmd.Flags().GetInt("issue"); number > 0 {
		tc := initTracker(cfg)
		if tc == nil {
			log.Fatalf("--issue requires a configured tracker (owner/repo)")
		}
		issue, err := tc.FetchIssue(ctx, number)
		if err != nil {
			log.Fatalf("Failed to fetch issue #%d: %v", number, err)
		}
		fmt.Fprintf(os.Stderr, "📌 Investigating issue #%d: %s\n", issue.Number, issue.Title)
		return tracker.ExtractTraceText(issue.Body)
	}

	if path, _ := cmd.Flags().GetString("trace-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read trace file: %v", err)
		}
		return string(data)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("Failed to read trace from stdin: %v", err)
	}
	return string(data)
}

func initAdvisor(ctx context.Context, cfg *config.Config) advisor.Advisor {
	adv, err := advisor.NewFromConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Advisor disabled: %v\n", err)
		return nil
	}
	return adv
}

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Scan the codebase and print a markdown summary of its source files",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Bad root path: %v", err)
		}

		maxFiles, _ := cmd.Flags().GetInt("max-files")
		if maxFiles == 0 {
			maxFiles = cfg.Limits.MaxFiles
		}

		fmt.Fprintf(os.Stderr, "📂 Scanning %s...\n", absRoot)
		analyses, err := locator.Scan(absRoot, locator.ScanOptions{MaxFiles: maxFiles})
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}

		fmt.Print(report.CodebaseSummary(absRoot, analyses))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived investigations, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		store := initStore()
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := store.ListInvestigations(context.Background(), limit)
		if err != nil {
			log.Fatalf("Failed to list investigations: %v", err)
		}

		if len(records) == 0 {
			fmt.Println("No archived investigations.")
			return
		}
		for _, rec := range records {
			fmt.Printf("%s  %s  frames=%d  fp=%s  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.ID, rec.FrameCount, rec.Fingerprint, rec.Root)
		}
	},
}

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List open tracker issues, candidates for investigation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		tc := initTracker(cfg)
		if tc == nil {
			log.Fatalf("No tracker configured (owner/repo)")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit == 0 {
			limit = cfg.Limits.IssueListLimit
		}
		issues, err := tc.ListIssues(context.Background(), limit)
		if err != nil {
			log.Fatalf("Failed to list issues: %v", err)
		}

		if len(issues) == 0 {
			fmt.Println("No open issues.")
			return
		}
		for _, issue := range issues {
			fmt.Printf("#%-5d %s\n", issue.Number, issue.Title)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the investigator over MCP on stdin/stdout",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			logger.Warn("archive unavailable, investigations will not be saved", "error", err)
			store = nil
		} else {
			defer store.Close()
		}

		deps := mcp.Deps{
			Config:  cfg,
			Store:   store,
			Tracker: initTracker(cfg),
			Advisor: initAdvisor(ctx, cfg),
		}

		if err := mcp.NewServer(version, deps, logger).Run(ctx); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}
	},
}
