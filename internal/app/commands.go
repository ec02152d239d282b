package app

import (
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/config"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/generation"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/security"
)

// NewRootCommand はCLIのルートコマンドを生成する。
// logWはログの出力先、outWはgenerateコマンドの結果の出力先。
// サブコマンドなしで起動した場合はserveとして動作する。
func NewRootCommand(logW, outW io.Writer) *cobra.Command {
	serveCmd := newServeCommand(logW)

	root := &cobra.Command{
		Use:           "ideation",
		Short:         "Content idea generation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}

	root.AddCommand(
		serveCmd,
		newWorkerCommand(logW),
		newMigrateCommand(logW),
		newHealthcheckCommand(),
		newGenerateCommand(logW, outW),
	)
	return root
}

func newServeCommand(logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(logW, config.Load)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func newWorkerCommand(logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Periodically delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(logW, config.LoadForStorage)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runWorker(cmd.Context(), cfg)
		},
	}
}

func newMigrateCommand(logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(logW, config.LoadForStorage)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runMigrate(cfg)
		},
	}
}

// newHealthcheckCommand は軽量サブコマンドのため、設定の読み込みを行わない。
func newHealthcheckCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check the health endpoint of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				port := os.Getenv("SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				addr = "http://localhost:" + port
			}
			return runHealthcheck(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server base URL (default http://localhost:$SERVER_PORT)")
	return cmd
}

func newGenerateCommand(logW, outW io.Writer) *cobra.Command {
	var (
		req     model.GenerationRequest
		ctype   string
		tone    string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content ideas once and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(logW, config.LoadForGeneration)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			completer, err := newCompleter(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			svc := generation.NewService(completer, security.NewTextSanitizer(), generation.Options{
				Temperature: cfg.CompletionTemperature,
				MaxTokens:   cfg.CompletionMaxTokens,
			})

			req.ContentType = model.ContentType(ctype)
			req.Tone = model.Tone(tone)
			candidates, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			printer := pp.New()
			printer.SetOutput(outW)
			printer.SetColoringEnabled(!noColor)
			printer.Println(candidates)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ctype, "type", "", "content type (blog, video, social)")
	flags.StringVar(&req.Topic, "topic", "", "topic to generate ideas about")
	flags.StringVar(&req.Audience, "audience", "", "target audience")
	flags.StringVar(&tone, "tone", "", "tone (professional, casual, friendly, humorous, informative)")
	flags.IntVar(&req.Count, "count", 0, "number of ideas (1-10, default 5)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
