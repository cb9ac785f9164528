package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podbase-blog/blogpage"
	"podbase-blog/cmd/browse/tui"
	"podbase-blog/cmd/internal/queryclient"
	"podbase-blog/config"
	"podbase-blog/eventbus"
	"podbase-blog/logger"
	"podbase-blog/seo"
)

var (
	flagConfig  string
	flagBaseURL string
	flagLogFile string
	flagPage    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "browse",
		Short:         "Browse the Podbase blog in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBrowse,
	}
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config.yaml (default: discovered from the working directory)")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "query service base URL (overrides query_service.base_url)")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "browse.log", "file receiving the structured log")
	rootCmd.Flags().IntVar(&flagPage, "page-size", 0, "posts per page (overrides blog_page.page_size)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.AppConfig, error) {
	if flagConfig == "" {
		return config.GetConfig(), nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.AppConfig{}, err
	}
	return *cfg, nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagBaseURL != "" {
		cfg.QueryService.BaseURL = flagBaseURL
	}
	if flagPage > 0 {
		cfg.BlogPage.PageSize = flagPage
	}

	// 화면을 점유하므로 로그는 파일로 보낸다.
	if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	logFile, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger.Log = logger.NewWriterLogger(logFile, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := queryclient.New(cfg.QueryService.BaseURL, cfg.QueryService.Timeout())
	healthCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Health(healthCtx); err != nil {
		logger.WarnWithFields("query service health check failed", logger.Fields{
			"base_url": cfg.QueryService.BaseURL,
			"error":    err.Error(),
		})
	}
	cancel()

	meta, closeMeta := newMetaService(cfg.Events)
	defer closeMeta()

	return tui.Run(ctx, tui.RunOpts{
		Service: client,
		Meta:    meta,
		PageOptions: []blogpage.Option{
			blogpage.WithPageSize(cfg.BlogPage.PageSize),
			blogpage.WithSearchDebounce(cfg.BlogPage.SearchDebounce()),
			blogpage.WithRequestTimeout(cfg.QueryService.Timeout()),
			blogpage.WithMeta(seo.PageMeta{
				Title:       cfg.BlogPage.MetaTitle,
				Description: cfg.BlogPage.MetaDescription,
			}),
		},
	})
}

// newMetaService 는 Kafka 브로커가 설정되어 있으면 page.meta_updated 이벤트도 발행한다.
// 브로커 연결에 실패하면 로그만 남기는 구성으로 내려간다.
func newMetaService(cfg config.EventsConfig) (seo.MetaService, func()) {
	if cfg.Brokers == "" {
		return seo.LogMeta{}, func() {}
	}

	topic := eventbus.NewTopic(cfg.Topic)
	if err := eventbus.EnsureTopic(cfg.Brokers, topic, 1); err != nil {
		logger.WarnWithFields("ensure topic failed", logger.Fields{"topic": topic.Base(), "error": err.Error()})
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Brokers)
	if err != nil {
		logger.ErrorWithFields("kafka event bus unavailable", logger.Fields{"brokers": cfg.Brokers, "error": err.Error()})
		return seo.LogMeta{}, func() {}
	}

	pub := seo.NewEventPublisher(bus, topic.Base(), "blog-browse", "blog")
	return seo.Multi{seo.LogMeta{}, pub}, func() {
		pub.Wait()
		bus.Close()
	}
}
