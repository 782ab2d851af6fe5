package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/screening"
)

var errEmptyJob = errors.New("job description must not be empty")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank PDF resumes in a directory against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("resumes-dir", "resumes", "folder containing PDF resumes")
	rankCmd.Flags().StringP("job", "J", "", "job description text. If omitted, will prompt")
	rankCmd.Flags().BoolP("explain", "e", false, "print an explanation for each candidate")
	rankCmd.Flags().Bool("dump", false, "dump ranked results to a json file in the temp directory")
	rankCmd.Flags().Int("workers", 4, "parallel PDF extraction workers")

	viper.BindPFlag("resumes-dir", rankCmd.Flags().Lookup("resumes-dir"))
	viper.BindPFlag("workers", rankCmd.Flags().Lookup("workers"))
}

// rank is the batch mode of the cli.
func rank(cmd *cobra.Command) {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the resume-screener", zap.String("version", version))

	job, _ := cmd.Flags().GetString("job")
	if strings.TrimSpace(job) == "" {
		job, err = promptJob()
		if err != nil {
			logger.Fatal("reading job description", zap.Error(err))
		}
	}

	docs, err := extract.ListPDFs(config.ResumesDir)
	if err != nil {
		if errors.Is(err, extract.ErrDirNotFound) {
			logger.Fatal(fmt.Sprintf("Resumes directory not found: %s", config.ResumesDir),
				zap.String("hint", "pass --resumes-dir or set resumes-dir in the configuration file"),
			)
		}
		logger.Fatal("listing resumes", zap.Error(err))
	}

	if len(docs) == 0 {
		printNoResumes(out)
		return
	}

	explainFlag, _ := cmd.Flags().GetBool("explain")

	pipeline, err := newPipeline(ctx, config, logger, pipelineOptions{
		skipExplain: !explainFlag,
		progress:    progressPrinter(out),
	})
	if err != nil {
		logger.Fatal("preparing providers", zap.Error(err))
	}

	run, err := pipeline.Screen(ctx, job, docs)
	if err != nil {
		var cfgErr *screening.ConfigurationError
		var embErr *screening.EmbeddingError
		switch {
		case errors.As(err, &cfgErr):
			logger.Fatal("configuration error", zap.String("reason", cfgErr.Reason), zap.String("hint", cfgErr.Hint))
		case errors.As(err, &embErr):
			logger.Fatal("Embedding error", zap.Error(embErr.Err), zap.String("stage", embErr.Stage),
				zap.String("hint", "check the embedding provider credentials and availability"),
			)
		default:
			logger.Fatal("screening failed", zap.Error(err))
		}
	}

	printRanking(out, run)

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		filename, err := report.DumpToTmpFile(run)
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}
}

func promptJob() (string, error) {
	prompt := promptui.Prompt{
		Label: "Enter job description",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errEmptyJob
			}
			return nil
		},
	}

	job, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(job), nil
}

func progressPrinter(out io.Writer) func(screening.State) {
	return func(state screening.State) {
		switch state {
		case screening.StateExtracting:
			fmt.Fprintln(out, "Extracting text from PDFs...")
		case screening.StateEmbedding:
			fmt.Fprintln(out, "Generating embeddings...")
		case screening.StateExplaining:
			fmt.Fprintln(out, "Generating explanations...")
		}
	}
}

func printNoResumes(out io.Writer) {
	fmt.Fprintln(out, "Extracting text from PDFs...")
	fmt.Fprintln(out, "No PDF resumes found in the directory.")
}

func printRanking(out io.Writer, run *screening.Run) {
	fmt.Fprintln(out, "\nRanked candidates:")
	lines := report.Lines(run.Candidates)
	for i, line := range lines {
		fmt.Fprintln(out, line)
		if !run.Explained {
			continue
		}
		for _, explanation := range strings.Split(run.Candidates[i].Explanation, "\n") {
			fmt.Fprintf(out, "    %s\n", explanation)
		}
	}
}
