package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/pkg/clinic"
	"github.com/clinicdesk/clinicdesk/pkg/controller"
)

// entityOps wires one resource's API calls into the shared command layout.
// Optional operations are nil for resources that do not support them.
type entityOps[T any, I any] struct {
	use   string
	short string

	list       func(*app, context.Context, clinic.Filter) (*clinic.ListPage[T], error)
	get        func(*app, context.Context, string) (*T, error)
	create     func(*app, context.Context, I) (*T, error)
	update     func(*app, context.Context, string, I) (*T, error)
	activate   func(*app, context.Context, string) (*T, error)
	deactivate func(*app, context.Context, string) (*T, error)
	// softDelete covers resources where the backend deactivates through the
	// DELETE verb, like patients.
	softDelete func(*app, context.Context, string) (*clinic.DeleteResult, error)
	remove     func(*app, context.Context, string) (*clinic.DeleteResult, error)
}

func resourceCommands() []*cobra.Command {
	return []*cobra.Command{
		newEntityCmd(entityOps[clinic.Patient, clinic.PatientInput]{
			use:   "patients",
			short: "Manage patients",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Patient], error) {
				return a.client.Patients().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Patient, error) {
				return a.client.Patients().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.PatientInput) (*clinic.Patient, error) {
				return a.client.Patients().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.PatientInput) (*clinic.Patient, error) {
				return a.client.Patients().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.Patient, error) {
				return a.client.Patients().Activate(ctx, id)
			},
			softDelete: func(a *app, ctx context.Context, id string) (*clinic.DeleteResult, error) {
				return a.client.Patients().Deactivate(ctx, id)
			},
		}, patientStatsCmd()),

		newEntityCmd(entityOps[clinic.Doctor, clinic.DoctorInput]{
			use:   "doctors",
			short: "Manage doctors",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Doctor], error) {
				return a.client.Doctors().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Doctor, error) {
				return a.client.Doctors().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.DoctorInput) (*clinic.Doctor, error) {
				return a.client.Doctors().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.DoctorInput) (*clinic.Doctor, error) {
				return a.client.Doctors().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.Doctor, error) {
				return a.client.Doctors().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.Doctor, error) {
				return a.client.Doctors().Deactivate(ctx, id)
			},
		}, doctorSearchCmd()),

		newEntityCmd(entityOps[clinic.User, clinic.UserInput]{
			use:   "users",
			short: "Manage system users",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.User], error) {
				return a.client.Users().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.User, error) {
				return a.client.Users().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.UserInput) (*clinic.User, error) {
				return a.client.Users().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.UserInput) (*clinic.User, error) {
				return a.client.Users().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.User, error) {
				return a.client.Users().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.User, error) {
				return a.client.Users().Deactivate(ctx, id)
			},
		}),

		newEntityCmd(entityOps[clinic.Role, clinic.RoleInput]{
			use:   "roles",
			short: "Manage roles and permissions",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Role], error) {
				return a.client.Roles().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Role, error) {
				return a.client.Roles().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.RoleInput) (*clinic.Role, error) {
				return a.client.Roles().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.RoleInput) (*clinic.Role, error) {
				return a.client.Roles().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.Role, error) {
				return a.client.Roles().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.Role, error) {
				return a.client.Roles().Deactivate(ctx, id)
			},
			remove: func(a *app, ctx context.Context, id string) (*clinic.DeleteResult, error) {
				return a.client.Roles().Delete(ctx, id)
			},
		}),

		newEntityCmd(entityOps[clinic.Floor, clinic.FloorInput]{
			use:   "floors",
			short: "Manage building floors",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Floor], error) {
				return a.client.Floors().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Floor, error) {
				return a.client.Floors().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.FloorInput) (*clinic.Floor, error) {
				return a.client.Floors().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.FloorInput) (*clinic.Floor, error) {
				return a.client.Floors().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.Floor, error) {
				return a.client.Floors().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.Floor, error) {
				return a.client.Floors().Deactivate(ctx, id)
			},
		}),

		newEntityCmd(entityOps[clinic.Office, clinic.OfficeInput]{
			use:   "offices",
			short: "Manage consultation offices",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Office], error) {
				return a.client.Offices().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Office, error) {
				return a.client.Offices().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.OfficeInput) (*clinic.Office, error) {
				return a.client.Offices().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.OfficeInput) (*clinic.Office, error) {
				return a.client.Offices().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.Office, error) {
				return a.client.Offices().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.Office, error) {
				return a.client.Offices().Deactivate(ctx, id)
			},
		}),

		newEntityCmd(entityOps[clinic.Booking, clinic.BookingInput]{
			use:   "bookings",
			short: "Manage appointments",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.Booking], error) {
				return a.client.Bookings().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.Booking, error) {
				return a.client.Bookings().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.BookingInput) (*clinic.Booking, error) {
				return a.client.Bookings().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.BookingInput) (*clinic.Booking, error) {
				return a.client.Bookings().Update(ctx, id, in)
			},
		}, bookingCancelCmd()),

		newEntityCmd(entityOps[clinic.MedicalHistory, clinic.HistoryInput]{
			use:   "histories",
			short: "Manage medical histories",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.MedicalHistory], error) {
				return a.client.Histories().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.MedicalHistory, error) {
				return a.client.Histories().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.HistoryInput) (*clinic.MedicalHistory, error) {
				return a.client.Histories().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.HistoryInput) (*clinic.MedicalHistory, error) {
				return a.client.Histories().Update(ctx, id, in)
			},
		}),

		newEntityCmd(entityOps[clinic.ChatbotPrompt, clinic.PromptInput]{
			use:   "prompts",
			short: "Manage chatbot prompts",
			list: func(a *app, ctx context.Context, f clinic.Filter) (*clinic.ListPage[clinic.ChatbotPrompt], error) {
				return a.client.Prompts().List(ctx, f)
			},
			get: func(a *app, ctx context.Context, id string) (*clinic.ChatbotPrompt, error) {
				return a.client.Prompts().Get(ctx, id)
			},
			create: func(a *app, ctx context.Context, in clinic.PromptInput) (*clinic.ChatbotPrompt, error) {
				return a.client.Prompts().Create(ctx, in)
			},
			update: func(a *app, ctx context.Context, id string, in clinic.PromptInput) (*clinic.ChatbotPrompt, error) {
				return a.client.Prompts().Update(ctx, id, in)
			},
			activate: func(a *app, ctx context.Context, id string) (*clinic.ChatbotPrompt, error) {
				return a.client.Prompts().Activate(ctx, id)
			},
			deactivate: func(a *app, ctx context.Context, id string) (*clinic.ChatbotPrompt, error) {
				return a.client.Prompts().Deactivate(ctx, id)
			},
			remove: func(a *app, ctx context.Context, id string) (*clinic.DeleteResult, error) {
				return a.client.Prompts().Delete(ctx, id)
			},
		}),
	}
}

func newEntityCmd[T any, I any](ops entityOps[T, I], extra ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: ops.use, Short: ops.short}

	cmd.AddCommand(listCmd(ops))
	cmd.AddCommand(idCmd("get ID", "Fetch one by id", ops.get))
	cmd.AddCommand(createCmd(ops))
	cmd.AddCommand(updateCmd(ops))
	if ops.activate != nil {
		cmd.AddCommand(idCmd("activate ID", "Mark as active", ops.activate))
	}
	if ops.deactivate != nil {
		cmd.AddCommand(idCmd("deactivate ID", "Mark as inactive", ops.deactivate))
	}
	if ops.softDelete != nil {
		cmd.AddCommand(idCmd("deactivate ID", "Deactivate (the backend soft-deletes)", ops.softDelete))
	}
	if ops.remove != nil {
		cmd.AddCommand(idCmd("delete ID", "Delete permanently", ops.remove))
	}
	cmd.AddCommand(extra...)
	return cmd
}

func listCmd[T any, I any](ops entityOps[T, I]) *cobra.Command {
	var (
		search    string
		isActive  string
		sortBy    string
		sortOrder string
		page      int
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List with filters and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := parseActiveFlag(isActive)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.DefaultPageLimit
			}
			f := clinic.Filter{
				clinic.FilterPage:  page,
				clinic.FilterLimit: limit,
			}
			if search != "" {
				f[clinic.FilterSearch] = search
			}
			if active != nil {
				f[clinic.FilterIsActive] = *active
			}
			if sortBy != "" {
				f[clinic.FilterSortBy] = sortBy
				f[clinic.FilterSortOrder] = sortOrder
			}
			lc := controller.NewListController(cmd.Context(), func(ctx context.Context, f clinic.Filter) (*clinic.ListPage[T], error) {
				return ops.list(a, ctx, f)
			}, f, "Error al cargar la lista")
			if msg := lc.Err(); msg != "" {
				return errors.New(msg)
			}
			return printJSON(lc.Data())
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().StringVar(&isActive, "is-active", "", "filter by active state: true or false")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "asc", "asc or desc")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "page size")
	return cmd
}

// parseActiveFlag maps --is-active to a tri-state: nil when unset, otherwise
// the parsed boolean. Anything but "true" or "false" is rejected so a typo
// cannot silently flip the filter.
func parseActiveFlag(v string) (*bool, error) {
	switch v {
	case "":
		return nil, nil
	case "true", "false":
		b := v == "true"
		return &b, nil
	default:
		return nil, fmt.Errorf("--is-active must be true or false, got %q", v)
	}
}

// idCmd covers every single-argument operation: get, activate, deactivate,
// delete.
func idCmd[R any](use, short string, run func(*app, context.Context, string) (R, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			out, err := run(a, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func createCmd[T any, I any](ops entityOps[T, I]) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create --data JSON",
		Short: "Create from a JSON payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			in, err := decodeInput[I](data)
			if err != nil {
				return err
			}
			out, err := ops.create(a, cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON payload, or @file to read from disk")
	cmd.MarkFlagRequired("data")
	return cmd
}

func updateCmd[T any, I any](ops entityOps[T, I]) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update ID --data JSON",
		Short: "Apply a partial update from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			in, err := decodeInput[I](data)
			if err != nil {
				return err
			}
			out, err := ops.update(a, cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON payload, or @file to read from disk")
	cmd.MarkFlagRequired("data")
	return cmd
}

func decodeInput[I any](data string) (I, error) {
	var in I
	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		var err error
		raw, err = os.ReadFile(data[1:])
		if err != nil {
			return in, fmt.Errorf("read payload file: %w", err)
		}
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("parse payload: %w", err)
	}
	return in, nil
}

func patientStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show patient statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			stats, err := a.client.Patients().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func doctorSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Quick doctor lookup by name or specialty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(args[0])
			if term == "" {
				return printJSON([]clinic.Doctor{})
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			s := controller.NewSearcher(func(ctx context.Context, term string) ([]clinic.Doctor, error) {
				return a.client.Doctors().Search(ctx, term)
			})
			defer s.Close()

			done := make(chan struct{}, 1)
			s.OnChange(func() {
				switch s.State() {
				case controller.SearchResults, controller.SearchEmpty, controller.SearchError:
					select {
					case done <- struct{}{}:
					default:
					}
				}
			})
			ctx := cmd.Context()
			s.SetTerm(ctx, term)
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if s.State() == controller.SearchError {
				return errors.New(s.Err())
			}
			doctors := s.Results()
			if doctors == nil {
				doctors = []clinic.Doctor{}
			}
			return printJSON(doctors)
		},
	}
}

func bookingCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			booking, err := a.client.Bookings().Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(booking)
		},
	}
}
