package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/planetary"
	"github.com/litescript/ls-ephemeris/internal/timecodec"
)

func newRecordCmd(a *app) *cobra.Command {
	var (
		at      string
		asJSON  bool
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "record <body>",
		Short: "Compute the complete record of one body",
		Long: `Compute one body at one instant in all 18 frame, zodiac and
representation combinations.

Examples:
  ls-ephemeris record sun --at 2000-01-01T12:00:00Z --observer -0.1278,51.5074,11
  ls-ephemeris record moon --json
  ls-ephemeris record 15 --summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := catalog.LookupByName(args[0])
			if err != nil {
				return err
			}
			t, err := parseAt(at)
			if err != nil {
				return err
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer sess.Shutdown()

			rec, err := sess.ComputeRecord(cmd.Context(), body.ID, t)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return rec.WriteJSON(out)
			case summary:
				fmt.Fprintln(out, rec.String())
				return nil
			default:
				writeLeaves(cmd, rec)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant as RFC 3339 with offset, optionally followed by [Zone] (default now)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the record as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "write a one-line geocentric tropical summary")
	return cmd
}

// writeLeaves prints the 108 numbered leaves in iteration order.
func writeLeaves(cmd *cobra.Command, rec planetary.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (id %d) @ %s, JD %.6f\n\n", rec.Name, int(rec.ID), rec.Time.Format(time.RFC3339), rec.DayNumber)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFRAME\tZODIAC\tFIELD\tVALUE")
	leaves := rec.Leaves()
	i := 0
	for _, f := range flags.AllFrames {
		for _, z := range flags.AllZodiacs {
			for _, name := range planetary.FieldNames {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.9f\n", i+1, f, z, name, leaves[i])
				i++
			}
		}
	}
	tw.Flush()
}

func newTableCmd(a *app) *cobra.Command {
	var (
		at     string
		frame  string
		zodiac string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "table [body...]",
		Short: "Compute several bodies and print one frame and zodiac",
		Long: `Compute records for the named bodies (every catalog body when none are
given) and print a table for one frame and zodiac.

Examples:
  ls-ephemeris table --observer 2.35,48.85
  ls-ephemeris table sun moon mars --frame helio --zodiac sidereal
  ls-ephemeris table --json > positions.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.ParseFrame(frame)
			if err != nil {
				return err
			}
			z, err := flags.ParseZodiac(zodiac)
			if err != nil {
				return err
			}
			t, err := parseAt(at)
			if err != nil {
				return err
			}

			var bodies []catalog.ID
			for _, name := range args {
				b, err := catalog.LookupByName(name)
				if err != nil {
					return err
				}
				bodies = append(bodies, b.ID)
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer sess.Shutdown()

			records, err := sess.ComputeRecords(cmd.Context(), bodies, t)
			if err != nil {
				return explain(err)
			}

			if asJSON {
				return planetary.WriteRecordsJSON(cmd.OutOrStdout(), records)
			}
			planetary.WriteTable(cmd.OutOrStdout(), records, f, z)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant as RFC 3339 with offset (default now)")
	cmd.Flags().StringVar(&frame, "frame", "geocentric", "reference frame: geocentric, topocentric, heliocentric")
	cmd.Flags().StringVar(&zodiac, "zodiac", "tropical", "zodiac: tropical, sidereal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write all records as JSON")
	return cmd
}

func newBodiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the body catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tENGINE NAME\tKIND")
			for _, b := range catalog.Bodies {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", int(b.ID), b.Name, b.EngineName, b.Kind)
			}
			return tw.Flush()
		},
	}
}

func newRoundTripCmd() *cobra.Command {
	var (
		at   string
		zone string
	)

	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Convert an instant to a day number and back",
		Long: `Convert an instant to its Julian day number and back, reporting the
drift. The result is presented in --zone (default: the zone of --at).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseAt(at)
			if err != nil {
				return err
			}
			loc := t.Location()
			if zone != "" {
				if loc, err = time.LoadLocation(zone); err != nil {
					return fmt.Errorf("%w: zone %q: %v", timecodec.ErrInvalidTimestamp, zone, err)
				}
			}

			jd, err := timecodec.ToDayNumber(t)
			if err != nil {
				return err
			}
			back, err := timecodec.FromDayNumber(jd, loc)
			if err != nil {
				return err
			}
			drift, err := timecodec.RoundTripError(t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "instant:    %s\n", t.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "day number: %.9f\n", jd)
			fmt.Fprintf(out, "back:       %s\n", back.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "drift:      %v\n", drift)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant as RFC 3339 with offset (default now)")
	cmd.Flags().StringVar(&zone, "zone", "", "IANA zone to present the result in")
	return cmd
}

func newHorizonCmd(a *app) *cobra.Command {
	var (
		from string
		span time.Duration
		step time.Duration
	)

	cmd := &cobra.Command{
		Use:   "horizon <body>",
		Short: "Find rise, transit and set for the observer",
		Long: `Sample the topocentric apparent place of a body and report when it
crosses the horizon of the observer.

Examples:
  ls-ephemeris horizon sun --observer -0.1278,51.5074 --from 2024-06-21T00:00:00Z
  ls-ephemeris horizon moon --span 36h --step 5m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := catalog.LookupByName(args[0])
			if err != nil {
				return err
			}
			start, err := parseAt(from)
			if err != nil {
				return err
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer sess.Shutdown()

			w, err := sess.HorizonWindow(cmd.Context(), body.ID, start, span, step)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			fmtTime := func(t time.Time) string {
				if t.IsZero() {
					return "-"
				}
				return t.In(start.Location()).Format(time.RFC3339)
			}

			fmt.Fprintf(out, "%s from %s over %v\n", body.Name, start.Format(time.RFC3339), span)
			switch {
			case w.NeverRises:
				fmt.Fprintf(out, "never rises (highest %.2f°)\n", w.MaxElevation)
			case w.Circumpolar:
				fmt.Fprintf(out, "always above the horizon; transit %s at %.2f°\n", fmtTime(w.Transit), w.MaxElevation)
			default:
				fmt.Fprintf(out, "rise:    %s\n", fmtTime(w.Rise))
				fmt.Fprintf(out, "transit: %s (%.2f°)\n", fmtTime(w.Transit), w.MaxElevation)
				fmt.Fprintf(out, "set:     %s\n", fmtTime(w.Set))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start instant as RFC 3339 with offset (default now)")
	cmd.Flags().DurationVar(&span, "span", 24*time.Hour, "search length")
	cmd.Flags().DurationVar(&step, "step", 0, "sampling interval (default 10m)")
	return cmd
}
