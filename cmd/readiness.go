package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"velocity/internal/messaging"
	"velocity/internal/readiness"
)

var readinessJSON bool

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Run the platform readiness checks",
	Long:  `Checks database connectivity, schema, data consistency and the message broker. Exits non-zero when any check fails.`,
	RunE:  runReadiness,
}

func init() {
	readinessCmd.Flags().BoolVar(&readinessJSON, "json", false, "print the report as JSON")
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	nameStyle   = lipgloss.NewStyle().Width(36)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true).MarginBottom(1)
)

func statusStyle(s readiness.Status) lipgloss.Style {
	switch s {
	case readiness.Pass:
		return passStyle
	case readiness.Warn:
		return warnStyle
	}
	return failStyle
}

func runReadiness(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	var broker func() bool
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("RabbitMQ unreachable", zap.Error(err))
			broker = func() bool { return false }
		} else {
			defer rabbit.Close()
			broker = rabbit.IsConnected
		}
	}

	rep := readiness.NewRunner(log, readiness.DefaultChecks(db.DB, broker)...).Run(cmd.Context())

	if readinessJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		fmt.Println(titleStyle.Render("Velocity platform readiness"))
		for _, r := range rep.Results {
			fmt.Printf("%s %s %s\n",
				statusStyle(r.Status).Render(fmt.Sprintf("[%s]", r.Status)),
				nameStyle.Render(r.Name),
				detailStyle.Render(fmt.Sprintf("%s (%dms)", r.Detail, r.DurationMS)),
			)
		}
		fmt.Printf("\n%s  %d passed, %d warnings, %d failures\n",
			statusStyle(rep.Status).Render(string(rep.Status)), rep.Passed, rep.Warnings, rep.Failures)
	}

	if rep.Status == readiness.Fail {
		return fmt.Errorf("readiness failed: %d check(s) failing", rep.Failures)
	}
	return nil
}
