package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"home_energy/internal/apperr"
	"home_energy/internal/energy"
	"home_energy/internal/models"
	"home_energy/internal/service"
)

var fleetFile string

// Fleet describes an account and its devices.
type Fleet struct {
	Account struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"account"`
	Devices []FleetDevice `yaml:"devices"`
}

type FleetDevice struct {
	Name          string  `yaml:"name"`
	Category      string  `yaml:"category"`
	Room          string  `yaml:"room"`
	PowerRatingKW float64 `yaml:"power_rating_kw"`
	// Schedule overrides the category template when set.
	Schedule []models.ScheduleBlock `yaml:"schedule"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create an account and its devices from a fleet file",
	Long: `Reads a YAML fleet file, registers the account if needed, creates every
device and gives it the default weekly schedule of its category (or the
schedule listed in the file). Works against the database target only.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&fleetFile, "fleet", "configs/fleet.yml", "fleet file")
	rootCmd.AddCommand(seedCmd)
}

func loadFleet(path string) (*Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fleet file: %w", err)
	}
	var f Fleet
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fleet file: %w", err)
	}
	if f.Account.Email == "" || f.Account.Password == "" {
		return nil, fmt.Errorf("fleet file %s: account.email and account.password are required", path)
	}
	return &f, nil
}

// scheduleFor returns the declared schedule, or the category template.
func scheduleFor(d FleetDevice, cat models.Category) []models.ScheduleBlock {
	if len(d.Schedule) > 0 {
		return d.Schedule
	}
	return energy.DefaultSchedule(cat, d.PowerRatingKW)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if target != targetDB {
		return fmt.Errorf("seed writes to the database directly; use --target db")
	}
	fleet, err := loadFleet(fleetFile)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := loggerFor(cfg)
	defer func() { _ = log.Sync() }()

	svc, conn, err := openServices(cfg, retryFor(cfg), log)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ctx := cmd.Context()
	email, password = fleet.Account.Email, fleet.Account.Password
	if _, err := svc.SignUp(ctx, email, password); err != nil && !apperr.IsValidation(err) {
		return fmt.Errorf("registering %s: %w", email, err)
	}
	sess, err := signInLocal(ctx, svc)
	if err != nil {
		return err
	}
	return seedDevices(ctx, cmd, svc, sess, fleet.Devices)
}

// seedDevices skips devices that already exist with the same name and room,
// so seeding twice is harmless.
func seedDevices(ctx context.Context, cmd *cobra.Command, svc *service.Service, sess models.Session, devices []FleetDevice) error {
	existing, err := svc.ListDevices(ctx, sess)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, d := range existing {
		have[d.Name+"\x00"+d.Room] = true
	}

	for i, fd := range devices {
		if have[fd.Name+"\x00"+fd.Room] {
			fmt.Fprintf(cmd.OutOrStdout(), "skip %-24s already present\n", fd.Name)
			continue
		}
		d, err := svc.CreateDevice(ctx, sess, service.DeviceParams{
			Name: fd.Name, Category: fd.Category, Room: fd.Room, PowerRatingKW: fd.PowerRatingKW,
		})
		if err != nil {
			return fmt.Errorf("device %d (%s): %w", i, fd.Name, err)
		}
		blocks := scheduleFor(fd, d.Category)
		if err := svc.SetSchedule(ctx, sess, d.ID, blocks); err != nil {
			return fmt.Errorf("schedule for %s: %w", fd.Name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-24s %-16s %-12s %d blocks\n", d.ID, d.Name, d.Category, d.Room, len(blocks))
	}
	return nil
}
