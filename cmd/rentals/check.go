package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rentals/internal/availability"
	reservationsservice "rentals/internal/reservations/service"
	"rentals/pkg/model"
)

// checkFixture is an offline availability question: one resource, the
// requested interval and the reservations already held on it.
type checkFixture struct {
	Resource     model.ResourceRequest `json:"resource"`
	CheckIn      time.Time             `json:"check_in"`
	CheckOut     time.Time             `json:"check_out"`
	Reservations []fixtureReservation  `json:"reservations"`
}

type fixtureReservation struct {
	ID       string                  `json:"id"`
	GuestID  string                  `json:"guest_id"`
	CheckIn  time.Time               `json:"check_in"`
	CheckOut time.Time               `json:"check_out"`
	Status   model.ReservationStatus `json:"status,omitempty"`
}

type checkResult struct {
	ResourceID    string     `json:"resource_id"`
	Available     bool       `json:"available"`
	Reason        string     `json:"reason"`
	ConflictingID string     `json:"conflicting_reservation_id,omitempty"`
	FullDay       *time.Time `json:"full_day,omitempty"`
	Occupancy     int        `json:"occupancy,omitempty"`
}

func newCheckCmd() *cobra.Command {
	var (
		fixture  string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a JSON availability fixture offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if fixture != "-" {
				f, err := os.Open(fixture)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runCheck(in, cmd.OutOrStdout(), strategy)
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "-", "fixture file, - for stdin")
	cmd.Flags().StringVar(&strategy, "strategy", "sweep", "property center strategy: sweep or scan")
	return cmd
}

func runCheck(in io.Reader, out io.Writer, strategy string) error {
	var fx checkFixture
	if err := json.NewDecoder(in).Decode(&fx); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}
	if fx.CheckOut.Sub(fx.CheckIn) > reservationsservice.DefaultMaxStay {
		return fmt.Errorf("%w: %s to %s", model.ErrStayTooLong, fx.CheckIn.Format(time.RFC3339), fx.CheckOut.Format(time.RFC3339))
	}

	engine, err := engineFor(strategy)
	if err != nil {
		return err
	}

	res, err := fixtureResource(fx.Resource)
	if err != nil {
		return err
	}

	reservations := make([]*model.Reservation, 0, len(fx.Reservations))
	for i, r := range fx.Reservations {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("fixture-%d", i+1)
		}
		reservation, err := model.NewReservation(id, r.GuestID, res.ID, r.CheckIn, r.CheckOut, r.Status)
		if err != nil {
			return fmt.Errorf("reservation %s: %w", id, err)
		}
		reservations = append(reservations, reservation)
	}

	verdict := engine.Check(res, fx.CheckIn, fx.CheckOut, reservations)
	result := checkResult{
		ResourceID: res.ID,
		Available:  verdict.Available,
		Reason:     string(verdict.Reason),
		Occupancy:  verdict.Occupancy,
	}
	if verdict.Conflict != nil {
		result.ConflictingID = verdict.Conflict.ID
	}
	if !verdict.FullDay.IsZero() {
		day := verdict.FullDay
		result.FullDay = &day
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func engineFor(strategy string) (*availability.Engine, error) {
	switch strategy {
	case "", "sweep":
		return availability.NewEngine(availability.WithCenterStrategy(availability.Sweep)), nil
	case "scan":
		return availability.NewEngine(availability.WithCenterStrategy(availability.Scan)), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q, want sweep or scan", strategy)
	}
}

func fixtureResource(req model.ResourceRequest) (*model.Resource, error) {
	id := req.ID
	if id == "" {
		id = "fixture"
	}
	switch req.Kind {
	case model.KindUniqueHouse:
		buffer := model.DefaultCleaningBuffer
		if req.CleaningBuffer != "" {
			d, err := time.ParseDuration(req.CleaningBuffer)
			if err != nil {
				return nil, fmt.Errorf("invalid cleaning_buffer: %w", err)
			}
			buffer = d
		}
		return model.NewUniqueHouse(id, req.Name, req.Location, req.BasePrice, buffer)
	case model.KindPropertyCenter:
		return model.NewPropertyCenter(id, req.Name, req.Location, req.BasePrice, req.TotalInventory)
	default:
		return nil, fmt.Errorf("unknown resource kind %q", req.Kind)
	}
}
