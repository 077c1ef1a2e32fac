package command

import (
	"fmt"
	"strings"

	commandHandler "promptgate/internal/command/handler"
	"promptgate/internal/core"
	"promptgate/internal/service/filter"
	"promptgate/internal/service/usage"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(
	NewCommand,
	commandHandler.NewUsageHandler,
	commandHandler.NewFilterHandler,
	wire.Bind(new(commandHandler.UsageSummarizer), new(*usage.Aggregator)),
	wire.Bind(new(commandHandler.FilterChecker), new(*filter.ContentFilter)),
)

type Command struct {
	usageCommandHandler  *commandHandler.UsageHandler
	filterCommandHandler *commandHandler.FilterHandler
}

// NewCommand .
func NewCommand(
	usageCommandHandler *commandHandler.UsageHandler,
	filterCommandHandler *commandHandler.FilterHandler,
) *Command {
	return &Command{
		usageCommandHandler:  usageCommandHandler,
		filterCommandHandler: filterCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	var days int
	usageCmd := &cobra.Command{
		Use:   "usage <user_id>",
		Short: "print a usage summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			return command.usageCommandHandler.Summary(cmd, args[0], days)
		},
	}
	usageCmd.Flags().IntVar(&days, "days", 7, "summary window in days (1-365)")

	var userID, stage string
	filterCmd := &cobra.Command{
		Use:   "filter <text>",
		Short: "run the content filter against text and print the verdict",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filterStage := core.FilterStage(stage)
			if filterStage != core.FilterStageInput && filterStage != core.FilterStageOutput {
				return fmt.Errorf("unknown stage %q", stage)
			}
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			return command.filterCommandHandler.Check(cmd, userID, filterStage, strings.Join(args, " "))
		},
	}
	filterCmd.Flags().StringVar(&userID, "user", "cli", "user id attached to the security event")
	filterCmd.Flags().StringVar(&stage, "stage", string(core.FilterStageInput), "input or output")

	rootCmd.AddCommand(usageCmd, filterCmd)
}
