// Package cli implements the fideboard command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/fideboard/internal/config"
	"github.com/okian/fideboard/pkg/logger"
)

// annotationTUI marks commands that own the terminal; their logs go to the log file.
const annotationTUI = "tui"

// runtime is the state shared by every command once configuration is loaded.
type runtime struct {
	cfg     *config.Config
	log     logger.Logger
	logFile *os.File
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	rt := &runtime{}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "fideboard",
		Short:         "Browse and maintain FIDE top player rankings",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			rt.cfg = cfg
			return rt.setupLogging(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if rt.logFile != nil {
				return rt.logFile.Close()
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newBrowseCmd(rt),
		newVerifyCmd(rt),
		newSeedCmd(rt),
		newDownloadCmd(rt),
	)
	return cmd
}

// setupLogging sends logs to stderr, or to the log file for commands that draw
// on the terminal. Without a log file those commands log nowhere.
func (rt *runtime) setupLogging(cmd *cobra.Command) error {
	var w io.Writer = cmd.ErrOrStderr()
	if cmd.Annotations[annotationTUI] == "true" {
		w = io.Discard
		if rt.cfg.LogFile != "" {
			if err := os.MkdirAll(filepath.Dir(rt.cfg.LogFile), 0o750); err != nil {
				return fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(rt.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			rt.logFile = f
			w = f
		}
	}
	if err := logger.InitWithWriter(w); err != nil {
		return err
	}
	if err := logger.SetLevelString(rt.cfg.LogLevel); err != nil {
		return err
	}
	rt.log = logger.Named("cli")
	return nil
}
