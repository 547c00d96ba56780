package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
	"github.com/foodcritic-dev/foodcritic/internal/cli/format"
)

// NewRestaurantsCmd creates the restaurants command
func NewRestaurantsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "restaurants",
		Aliases: []string{"ls"},
		Short:   "List restaurants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runRestaurants(cmd.Context())
		},
	}
}

func (e *Env) runRestaurants(ctx context.Context) error {
	return e.withApp(ctx, false, func(a *app.App) error {
		restaurants, err := a.Client.ListRestaurants(ctx)
		if err != nil {
			return err
		}

		if len(restaurants) == 0 {
			fmt.Fprintln(e.out(), "No restaurants found.")
			fmt.Fprintln(e.out(), "\nFind some with: foodcritic search <query>")
			return nil
		}

		w := tabwriter.NewWriter(e.out(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCUISINE\tRATING\tREVIEWS\tPRICE")
		fmt.Fprintln(w, "──\t────\t───────\t──────\t───────\t─────")
		for _, r := range restaurants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.ID,
				r.Name,
				orDash(r.Cuisine),
				averageRating(r.AverageRating),
				r.ReviewCount,
				orDash(format.Price(r.PriceLevel)),
			)
		}
		return w.Flush()
	})
}

// NewRestaurantCmd creates the restaurant command
func NewRestaurantCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurant <id>",
		Short: "Show a restaurant and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runRestaurant(cmd.Context(), args[0])
		},
	}
}

func (e *Env) runRestaurant(ctx context.Context, id string) error {
	return e.withApp(ctx, false, func(a *app.App) error {
		r, err := a.Client.GetRestaurant(ctx, id)
		if err != nil {
			return err
		}

		out := e.out()
		fmt.Fprintf(out, "%s\n", r.Name)
		if r.AverageRating != nil {
			fmt.Fprintf(out, "  %s %s (%d reviews)\n", format.Stars(*r.AverageRating), format.Rating(*r.AverageRating), r.ReviewCount)
		}
		printField(out, "Cuisine", r.Cuisine)
		printField(out, "Price", format.Price(r.PriceLevel))
		printField(out, "Address", firstNonEmpty(r.Address, r.Location))
		printField(out, "Phone", r.PhoneNumber)
		printField(out, "Website", r.Website)
		if r.OpenNow != nil {
			printField(out, "Open now", yesNo(*r.OpenNow))
		}

		reviews, err := a.Client.ListReviews(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printReviews(out, reviews, false)
		return nil
	})
}

// NewReviewsCmd creates the reviews command
func NewReviewsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <restaurant-id>",
		Short: "List the reviews of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withApp(ctx, false, func(a *app.App) error {
				reviews, err := a.Client.ListReviews(ctx, args[0])
				if err != nil {
					return err
				}
				printReviews(env.out(), reviews, false)
				return nil
			})
		},
	}
}

// NewMyReviewCmd creates the my-review command
func NewMyReviewCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "my-review <restaurant-id>",
		Short: "Show your review of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withSession(ctx, func(a *app.App) error {
				review, err := a.Client.MyReview(ctx, args[0])
				if errors.Is(err, client.ErrReviewNotFound) {
					fmt.Fprintln(env.out(), "You have not reviewed this restaurant yet.")
					fmt.Fprintf(env.out(), "\nWrite one with: foodcritic review create %s --rating <1-5>\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}
				printReviews(env.out(), []client.Review{*review}, false)
				return nil
			})
		},
	}
}

// NewRecentCmd creates the recent command
func NewRecentCmd(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the newest reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withApp(ctx, false, func(a *app.App) error {
				reviews, err := a.Client.RecentReviews(ctx, limit)
				if err != nil {
					return err
				}
				printReviews(env.out(), reviews, true)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of reviews")

	return cmd
}

func printReviews(out io.Writer, reviews []client.Review, withRestaurant bool) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return
	}

	for i, r := range reviews {
		if i > 0 {
			fmt.Fprintln(out)
		}
		title := r.User.Username
		if withRestaurant && r.Restaurant != nil {
			title = fmt.Sprintf("%s on %s", r.User.Username, r.Restaurant.Name)
		}
		fmt.Fprintf(out, "#%d %s  %s  %s\n", r.ID, format.Stars(float64(r.Rating)), orDash(title), format.Date(r.CreatedAt))
		if r.Comment != "" {
			fmt.Fprintf(out, "  %s\n", r.Comment)
		}
		if r.ImageURL != "" {
			fmt.Fprintf(out, "  Photo: %s\n", r.ImageURL)
		}
	}
}

func printField(out io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "  %-9s %s\n", label+":", value)
}

func averageRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return format.Rating(*rating)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
