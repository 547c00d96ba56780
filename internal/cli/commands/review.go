package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
)

// NewReviewCmd creates the review command and its create/update/delete subcommands
func NewReviewCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write, edit or delete your reviews",
	}

	cmd.AddCommand(newReviewCreateCmd(env))
	cmd.AddCommand(newReviewUpdateCmd(env))
	cmd.AddCommand(newReviewDeleteCmd(env))

	return cmd
}

type reviewFlags struct {
	rating  int
	comment string
	image   string
}

func (f *reviewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&f.comment, "comment", "", "Review text")
	cmd.Flags().StringVar(&f.image, "image", "", "Photo to attach")
	_ = cmd.MarkFlagRequired("rating")
}

func newReviewCreateCmd(env *Env) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "create <restaurant-id>",
		Short: "Review a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runReviewCreate(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (e *Env) runReviewCreate(ctx context.Context, restaurantID string, flags reviewFlags) error {
	return e.withSession(ctx, func(a *app.App) error {
		req := client.ReviewRequest{Rating: flags.rating, Comment: flags.comment}
		if err := e.attachImage(ctx, a, flags.image, &req); err != nil {
			return err
		}

		review, err := a.Client.CreateReview(ctx, restaurantID, req)
		if err != nil {
			return err
		}

		fmt.Fprintf(e.out(), "✓ Review #%d created\n", review.ID)
		return nil
	})
}

func newReviewUpdateCmd(env *Env) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "update <restaurant-id> <review-id>",
		Short: "Edit one of your reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID, err := parseReviewID(args[1])
			if err != nil {
				return err
			}
			return env.runReviewUpdate(cmd.Context(), args[0], reviewID, flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (e *Env) runReviewUpdate(ctx context.Context, restaurantID string, reviewID int64, flags reviewFlags) error {
	return e.withSession(ctx, func(a *app.App) error {
		req := client.ReviewRequest{Rating: flags.rating, Comment: flags.comment}
		if err := e.attachImage(ctx, a, flags.image, &req); err != nil {
			return err
		}

		review, err := a.Client.UpdateReview(ctx, restaurantID, reviewID, req)
		if err != nil {
			return err
		}

		fmt.Fprintf(e.out(), "✓ Review #%d updated\n", review.ID)
		return nil
	})
}

func newReviewDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <restaurant-id> <review-id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID, err := parseReviewID(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return env.withSession(ctx, func(a *app.App) error {
				if err := a.Client.DeleteReview(ctx, args[0], reviewID); err != nil {
					return err
				}
				fmt.Fprintf(env.out(), "✓ Review #%d deleted\n", reviewID)
				return nil
			})
		},
	}
}

// attachImage uploads path, if given, and points the review at it
func (e *Env) attachImage(ctx context.Context, a *app.App, path string, req *client.ReviewRequest) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	uploaded, err := a.Client.UploadImage(ctx, path, f)
	if err != nil {
		return err
	}
	req.ImageURL = uploaded.URL
	return nil
}

// NewMyReviewsCmd creates the my-reviews command
func NewMyReviewsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "my-reviews",
		Short: "List every review you have written",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withSession(ctx, func(a *app.App) error {
				reviews, err := a.Client.MyReviews(ctx)
				if err != nil {
					return err
				}
				printReviews(env.out(), reviews, true)
				return nil
			})
		},
	}
}

// NewPhotoCmd creates the photo command
func NewPhotoCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <image-file>",
		Short: "Upload a new profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withSession(ctx, func(a *app.App) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open image: %w", err)
				}
				defer f.Close()

				uploaded, err := a.Client.UploadImage(ctx, args[0], f)
				if err != nil {
					return err
				}

				profile, err := a.Client.UpdateProfilePhoto(ctx, uploaded.URL)
				if err != nil {
					return err
				}
				a.Store.UpdateUser(*profile)

				fmt.Fprintf(env.out(), "✓ Profile photo updated: %s\n", profile.ProfilePhoto)
				return nil
			})
		},
	}
}
