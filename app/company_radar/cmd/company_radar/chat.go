package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/chat"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Research a company, then ask questions about it interactively",
	Long: `Starts an interactive session. Commands:
  :summary   generate a summary of the collected data
  :sources   print the collected data
  :clear     forget the current company and conversation
  :research  research another company (":research <name> [domain] [ticker]")
  :quit      exit`,
	RunE: runChat,
}

func init() {
	addSubjectFlags(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 日志会打断提示符，交互期间只写文件
	restoreLog, err := logger.FileOnly(appConfig.Log.File)
	if err != nil {
		return err
	}
	defer restoreLog()

	sess, err := session.NewFromConfig(ctx, appConfig)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if subjectFlags.Name != "" {
		if _, err := research(ctx, cmd, sess, subjectFlags); err != nil {
			fmt.Fprintf(out, "research failed: %v\n", err)
		}
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ":quit" || line == ":q" || line == ":exit":
			return nil
		case line == ":clear":
			sess.Clear()
			fmt.Fprintln(out, "Session cleared.")
		case line == ":summary":
			fmt.Fprintln(out, renderMarkdown(sess.Summarize(ctx)))
		case line == ":sources":
			snap := sess.Snapshot()
			if snap.Record == nil {
				fmt.Fprintln(out, chat.ErrNoResearch.Error())
				continue
			}
			fmt.Fprintln(out, snap.Record.PresenceSummary)
			printSources(cmd, snap.Record)
		case strings.HasPrefix(line, ":research"):
			subject, ok := parseResearchArgs(strings.TrimPrefix(line, ":research"))
			if !ok {
				fmt.Fprintln(out, "usage: :research <name> [domain] [ticker]")
				continue
			}
			if _, err := research(ctx, cmd, sess, subject); err != nil {
				fmt.Fprintf(out, "research failed: %v\n", err)
			}
		default:
			answer, err := sess.Ask(ctx, line)
			switch {
			case err == nil:
				fmt.Fprintln(out, renderMarkdown(answer))
			case errors.Is(err, chat.ErrNoResearch):
				fmt.Fprintln(out, "Please research a company first (:research <name>).")
			default:
				fmt.Fprintln(out, err.Error())
			}
		}
	}
}
