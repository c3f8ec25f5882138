package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
)

var (
	configPath string
	logLevel   string
	plain      bool
)

var rootCmd = &cobra.Command{
	Use:   "company_radar",
	Short: "Company intelligence: collect public data about a company and chat about it",
	Long: `company_radar gathers public information about a company (website, logo, news,
LinkedIn and Twitter snippets, employee reviews, financial data), builds a summary
with an LLM and answers questions using only the collected data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("无法加载配置文件: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
			return fmt.Errorf("无法初始化日志: %w", err)
		}
		appConfig = cfg
		return nil
	},
}

// appConfig 在 PersistentPreRunE 中加载
var appConfig *config.Config

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print markdown without rendering")

	rootCmd.AddCommand(researchCmd, chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// renderMarkdown 终端下用 glamour 渲染，失败时原样输出
func renderMarkdown(md string) string {
	if plain {
		return md
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
