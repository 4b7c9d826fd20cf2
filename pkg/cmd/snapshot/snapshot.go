package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/chat"
	"github.com/mpapenbr/f1-dashboard-service/pkg/config"
	"github.com/mpapenbr/f1-dashboard-service/pkg/endpoints/public"
	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/normalize"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

var errContextNeedsAll = errors.New("--context requires --type all")

func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "prints the current dashboard data once",
		Long: `Resolves the current session and prints the normalized dashboard data
as JSON. With --type only one sub-slice of the raw records is printed.
With --context the text handed to the chat assistant is printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := config.NewLogger(os.Stderr)
			if err != nil {
				return err
			}
			log.ResetDefault(logger)
			ctx, cancel := context.WithTimeout(cmd.Context(),
				config.DurationOrDefault(config.FetchTimeout, livesync.DefaultFetchTimeout))
			defer cancel()
			client := openf1.NewClient(
				openf1.WithBaseURL(config.OpenF1URL),
				openf1.WithLogger(logger.Named("openf1")))
			return run(ctx, cmd.OutOrStdout(), client)
		},
	}
	cmd.Flags().StringVar(&config.SnapshotType,
		"type",
		"all",
		"all | positions | laps | intervals | stints | pits | race_control")
	cmd.Flags().BoolVar(&config.SnapshotChat,
		"context",
		false,
		"print the chat context instead of JSON")
	cmd.Flags().IntVar(&config.ChatTopN,
		"chat-top-n",
		chat.DefaultTopN,
		"number of drivers put into the chat context")
	return cmd
}

func run(ctx context.Context, w io.Writer, client *openf1.Client) error {
	kind := config.SnapshotType
	if config.SnapshotChat && kind != "" && kind != "all" {
		return errContextNeedsAll
	}
	resolver := openf1.NewSessionResolver(client,
		openf1.WithYear(config.SessionYear),
		openf1.WithSessionName(config.SessionName))
	data, err := public.LoadF1Data(ctx, client, resolver,
		normalize.NewNormalizer(client), kind)
	if err != nil {
		return err
	}
	if config.SnapshotChat {
		vm, ok := data.(*model.DashboardViewModel)
		if !ok {
			return fmt.Errorf("unexpected data %T", data)
		}
		_, err = fmt.Fprintln(w, chat.BuildContext(vm, config.ChatTopN))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
