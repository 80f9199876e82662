package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/internal/adapter/repository"
	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/lock"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/storage"
	"github.com/johnquangdev/webhook-relay/internal/usecase/meeting"
	"github.com/johnquangdev/webhook-relay/pkg/config"
)

func newMeetingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Inspect stored Krisp meetings",
	}

	cmd.AddCommand(newMeetingsListCmd())
	cmd.AddCommand(newMeetingsShowCmd())

	return cmd
}

// openMeetings builds a read-only meeting service over KRISP_DATA_DIR
func openMeetings() (*config.Config, meeting.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	repo := repository.NewMeetingRepository(cfg.Data.MeetingDir, nil, zap.NewNop())
	return cfg, meeting.NewMeetingService(repo, lock.NewMemoryLocker(), nil, nil), nil
}

func newMeetingsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored meetings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := openMeetings()
			if err != nil {
				return err
			}

			meetings, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, meetings)
			}
			if len(meetings) == 0 {
				fmt.Fprintln(out, "No meetings found")
				return nil
			}
			return writeMeetingTable(out, meetings)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newMeetingsShowCmd() *cobra.Command {
	var (
		asJSON bool
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "show <directory>",
		Short: "Show the metadata and artifacts of one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := openMeetings()
			if err != nil {
				return err
			}

			m, err := svc.Get(cmd.Context(), args[0])
			if errors.Is(err, entities.ErrMeetingNotFound) {
				return fmt.Errorf("meeting %q not found in %s", args[0], cfg.Data.MeetingDir)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, m); err != nil {
					return err
				}
			} else {
				writeMeeting(out, m)
			}

			if !remote {
				return nil
			}
			if !cfg.Storage.Enabled {
				return fmt.Errorf("--remote needs STORAGE_ENABLED=true")
			}
			client, err := storage.NewMinIOClient(cmd.Context(), &cfg.Storage)
			if err != nil {
				return err
			}
			keys, err := client.ListFiles(cmd.Context(), m.Slug+"/")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nMirrored in %s:\n", client.Bucket())
			for _, k := range keys {
				fmt.Fprintln(out, "  "+k)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "also list the mirrored objects")
	return cmd
}

func writeMeetingTable(w io.Writer, meetings []*entities.Meeting) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIRECTORY\tTITLE\tARTIFACTS")
	for _, m := range meetings {
		artifacts := strings.Join(m.Artifacts, ",")
		if artifacts == "" {
			artifacts = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Slug, m.Metadata.Title(), artifacts)
	}
	return tw.Flush()
}

func writeMeeting(w io.Writer, m *entities.Meeting) {
	fmt.Fprintf(w, "Directory:  %s\n", m.Slug)
	fmt.Fprintf(w, "Title:      %s\n", m.Metadata.Title())
	if start := m.Metadata.StartDate(); start != "" {
		fmt.Fprintf(w, "Start:      %s\n", start)
	}
	if minutes, ok := m.Metadata.DurationMinutes(); ok {
		fmt.Fprintf(w, "Duration:   %d min\n", minutes)
	}
	if names := m.Metadata.ParticipantNames(); len(names) > 0 {
		fmt.Fprintf(w, "People:     %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Artifacts:  %s\n", strings.Join(m.Artifacts, ", "))
	fmt.Fprintf(w, "Events:     %s\n", strings.Join(m.Events, ", "))
	fmt.Fprintf(w, "Updated:    %s\n", m.UpdatedAt.Format("2006-01-02 15:04:05Z07:00"))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

