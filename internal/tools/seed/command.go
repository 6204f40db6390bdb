// Package seed loads a small fixture world for local development: a handful
// of characters, a pending relationship request and an upcoming event.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/common"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load development fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading config")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "per-command timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "apply",
			Short: "Insert the fixtures",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
					db, err := loadDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					return apply(db)
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "dry-run",
			Short: "List the fixtures without writing",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
					return plan(), nil
				})
				return err
			},
		},
	)
	return root
}

func run(opts *options, title string, action ui.Action) ([]string, error) {
	wrapped := func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		return action(ctx)
	}
	if opts.ci {
		details, err := wrapped(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		return details, nil
	}
	return ui.Run(title, wrapped)
}

func loadDB(envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg)
}

func fixtures() ([]domain.Character, domain.RelationshipRequest, domain.WorldEvent, []domain.EventAttendance) {
	characters := []domain.Character{
		{ID: 1, UserID: 1, Name: "Aldric", LocationID: 1, IsActive: true},
		{ID: 2, UserID: 2, Name: "Mira", LocationID: 1, IsActive: true},
		{ID: 3, UserID: 3, Name: "Tobin", LocationID: 2, IsActive: true},
	}
	request := domain.RelationshipRequest{
		ID: 1, FromCharacterID: 1, ToCharacterID: 2,
		Status: domain.RelationshipRequestPending,
	}
	event := domain.WorldEvent{
		ID: 1, Title: "Harvest Festival", LocationID: 1,
		StartsAt: time.Now().UTC().Add(10 * time.Minute),
	}
	attendees := []domain.EventAttendance{
		{EventID: 1, CharacterID: 1},
		{EventID: 1, CharacterID: 2},
	}
	return characters, request, event, attendees
}

func apply(db *gorm.DB) ([]string, error) {
	characters, request, event, attendees := fixtures()
	upsert := db.Clauses(clause.OnConflict{DoNothing: true})
	if err := upsert.Create(&characters).Error; err != nil {
		return nil, fmt.Errorf("seed characters: %w", err)
	}
	if err := upsert.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("seed relationship request: %w", err)
	}
	if err := upsert.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("seed event: %w", err)
	}
	if err := upsert.Create(&attendees).Error; err != nil {
		return nil, fmt.Errorf("seed attendees: %w", err)
	}
	return []string{
		fmt.Sprintf("characters: %d", len(characters)),
		"relationship requests: 1",
		"events: 1",
		fmt.Sprintf("attendees: %d", len(attendees)),
	}, nil
}

func plan() []string {
	characters, _, event, attendees := fixtures()
	lines := make([]string, 0, len(characters)+2)
	for _, c := range characters {
		lines = append(lines, fmt.Sprintf("character %q in location %d", c.Name, c.LocationID))
	}
	lines = append(lines, fmt.Sprintf("event %q with %d attendees", event.Title, len(attendees)))
	lines = append(lines, "relationship request 1 -> 2 (pending)")
	return lines
}
