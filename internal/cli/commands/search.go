package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
	"github.com/foodcritic-dev/foodcritic/internal/cli/format"
	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
)

type searchOptions struct {
	lat, lng      float64
	radius        int
	minRating     float64
	minPrice      int
	maxPrice      int
	cuisine       string
	sort          string
	pages         int
	hasPosition   bool
	hasMinRating  bool
	hasPriceRange [2]bool
}

// NewSearchCmd creates the search command
func NewSearchCmd(env *Env) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search restaurants near a location",
		Long: `Search restaurants near a location.

Without --lat/--lng the search is centred on the default location from
foodcritic.yaml (San Francisco when unset) and distance sorting is not available.`,
		Example: `  $ foodcritic search sushi
  $ foodcritic search --lat 40.7128 --lng -74.0060 --sort distance --pages 2`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts.hasPosition = flags.Changed("lat") && flags.Changed("lng")
			opts.hasMinRating = flags.Changed("min-rating")
			opts.hasPriceRange = [2]bool{flags.Changed("min-price"), flags.Changed("max-price")}
			if flags.Changed("lat") != flags.Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			return env.runSearch(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of your position")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "Longitude of your position")
	cmd.Flags().IntVar(&opts.radius, "radius", 0, "Search radius in metres (default from foodcritic.yaml)")
	cmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "Minimum rating")
	cmd.Flags().IntVar(&opts.minPrice, "min-price", 0, "Minimum price level (0-4)")
	cmd.Flags().IntVar(&opts.maxPrice, "max-price", 4, "Maximum price level (0-4)")
	cmd.Flags().StringVar(&opts.cuisine, "cuisine", "", "Cuisine filter")
	cmd.Flags().StringVar(&opts.sort, "sort", "relevance", "Sort by relevance, distance or rating")
	cmd.Flags().IntVar(&opts.pages, "pages", 1, "Number of result pages to show")

	return cmd
}

func (e *Env) runSearch(ctx context.Context, query string, opts searchOptions) error {
	mode, err := places.ParseSortMode(opts.sort)
	if err != nil {
		return err
	}

	return e.withApp(ctx, false, func(a *app.App) error {
		var locator places.Locator
		if opts.hasPosition {
			locator = &places.StaticLocator{Position: &places.Location{Latitude: opts.lat, Longitude: opts.lng}}
		}
		origin, fromUser := a.Location(ctx, locator)
		if mode == places.SortDistance && !fromUser {
			fmt.Fprintln(e.errOut(), "Note: distance sorting needs --lat/--lng; showing results by relevance.")
		}

		req := client.PlacesSearchRequest{
			Query:   strings.TrimSpace(query),
			Radius:  opts.radius,
			Cuisine: opts.cuisine,
		}
		if req.Radius == 0 {
			req.Radius = a.Project.Radius()
		}
		if opts.hasMinRating {
			req.MinRating = &opts.minRating
		}
		if opts.hasPriceRange[0] {
			req.MinPriceLevel = &opts.minPrice
		}
		if opts.hasPriceRange[1] {
			req.MaxPriceLevel = &opts.maxPrice
		}

		feed := places.NewFeed(req, origin, fromUser, mode)
		if err := feed.Search(ctx, a.Client); err != nil {
			return err
		}
		for page := 1; page < opts.pages && feed.CanLoadMore(); page++ {
			if err := feed.LoadMore(ctx, a.Client); err != nil {
				if errors.Is(err, places.ErrNoMoreResults) {
					break
				}
				return err
			}
		}

		printFeed(e.out(), feed)
		return nil
	})
}

func printFeed(out io.Writer, feed *places.Feed) {
	visible := feed.Visible()
	origin, _ := feed.Origin()

	if len(visible) == 0 {
		fmt.Fprintf(out, "No restaurants found near %s.\n", origin)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLACE ID\tNAME\tRATING\tPRICE\tDISTANCE\tADDRESS")
	fmt.Fprintln(w, "────────\t────\t──────\t─────\t────────\t───────")
	for _, r := range visible {
		distance, ok := feed.DistanceTo(r)
		if !ok {
			distance = "-"
		}
		rating := "-"
		if r.Rating > 0 {
			rating = format.Rating(r.Rating)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PlaceID,
			r.Name,
			rating,
			orDash(format.Price(r.PriceLevel)),
			distance,
			orDash(firstNonEmpty(r.Vicinity, r.FormattedAddress)),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nShowing %d of %d loaded results.", len(visible), feed.Loaded())
	if feed.CanLoadMore() {
		fmt.Fprintf(out, " Use --pages %d for more.", feed.Page()+1)
	}
	fmt.Fprintln(out)
}

// NewDetailsCmd creates the details command
func NewDetailsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "details <place-id>",
		Short: "Show the full record of a place from search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withApp(ctx, false, func(a *app.App) error {
				resp, err := a.Client.PlaceDetails(ctx, args[0])
				if err != nil {
					return err
				}
				if err := resp.Err(); err != nil {
					return err
				}
				printPlaceDetails(env.out(), &resp.Result)
				return nil
			})
		},
	}
}

func printPlaceDetails(out io.Writer, d *client.PlaceDetails) {
	fmt.Fprintln(out, d.Name)
	if d.Rating > 0 {
		fmt.Fprintf(out, "  %s %s (%d ratings)\n", format.Stars(d.Rating), format.Rating(d.Rating), d.UserRatingsTotal)
	}
	printField(out, "Price", format.Price(d.PriceLevel))
	printField(out, "Address", d.FormattedAddress)
	printField(out, "Phone", d.FormattedPhoneNumber)
	printField(out, "Website", d.Website)
	if d.OpeningHours != nil {
		if d.OpeningHours.OpenNow != nil {
			printField(out, "Open now", yesNo(*d.OpeningHours.OpenNow))
		}
		for _, line := range d.OpeningHours.WeekdayText {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}

	for _, r := range d.Reviews {
		fmt.Fprintf(out, "\n%s  %s  %s\n", format.Stars(float64(r.Rating)), r.AuthorName, r.RelativeTimeDescription)
		if r.Text != "" {
			fmt.Fprintf(out, "  %s\n", r.Text)
		}
	}
}

// NewSuggestCmd creates the suggest command
func NewSuggestCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Autocomplete a restaurant name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withApp(ctx, false, func(a *app.App) error {
				origin := a.Project.Location()
				resp, err := a.Client.PlaceSuggestions(ctx, client.PlaceSuggestionsRequest{
					Input:     strings.Join(args, " "),
					Latitude:  &origin.Latitude,
					Longitude: &origin.Longitude,
					Radius:    a.Project.Radius(),
				})
				if err != nil {
					return err
				}
				if err := resp.Err(); err != nil {
					return err
				}

				if len(resp.Predictions) == 0 {
					fmt.Fprintln(env.out(), "No suggestions.")
					return nil
				}
				for _, p := range resp.Predictions {
					fmt.Fprintf(env.out(), "%s\t%s\n", p.PlaceID, p.Description)
				}
				return nil
			})
		},
	}
}
