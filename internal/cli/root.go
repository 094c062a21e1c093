package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/standing/pkg/log"
	"github.com/macropower/standing/pkg/version"
)

const (
	cmdName = version.Name
	cmdDesc = `Classify gradebook columns, compute weighted running averages, and highlight students at risk.`
)

type RootArgs struct {
	shutdown func(context.Context) error

	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
	OTLPInsecure bool
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint (host:port)")
	cmd.PersistentFlags().
		BoolVar(&ra.OTLPInsecure, "otlp-insecure", false, "Disable TLS for the OTLP exporter")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	runArgs := NewRunArgs(args)

	runCmd := NewRunCmd(runArgs)
	cmd := &cobra.Command{
		Use:                cmdName + " [scores.csv]",
		Short:              cmdDesc,
		Example:            cmdExamples,
		PersistentPreRunE:  setup(args),
		PersistentPostRunE: teardown(args),
		ValidArgsFunction:  runCmd.ValidArgsFunction,
		Args:               runCmd.Args,
		RunE:               runCmd.RunE,
	}

	args.AddFlags(cmd)
	runArgs.AddFlags(cmd)
	cmd.AddCommand(
		runCmd,
		NewClassifyCmd(args),
		NewAverageCmd(args),
		NewRulesCmd(args),
		NewMCPCmd(args),
		NewSchemaCmd(),
	)

	bindEnvVars(cmd)

	return cmd
}

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logger, err := log.New(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}

		slog.SetDefault(logger)

		slog.Debug("starting", slog.Any("build", version.Get()))

		ra.shutdown, err = setupTracing(cmd.Context(), ra.OTLPEndpoint, ra.OTLPInsecure)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}

		return nil
	}
}

func teardown(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if ra.shutdown == nil {
			return nil
		}

		err := ra.shutdown(context.WithoutCancel(cmd.Context()))
		if err != nil {
			return fmt.Errorf("shutdown tracing: %w", err)
		}

		return nil
	}
}
