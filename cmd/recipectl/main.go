package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pageza/cookbook/backend/pkg/client"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, "Error:", apiErr.UserMessage())
		}
		os.Exit(1)
	}
}

type app struct {
	out       io.Writer
	server    string
	tokenFile string
	client    *client.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "recipectl",
		Short:        "Command line client for the cookbook API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect()
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", envOr("RECIPECTL_SERVER", "http://localhost:8000/api/v1"), "API base URL")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", defaultTokenFile(), "Where the session tokens are kept")

	root.AddCommand(a.loginCmd(), a.logoutCmd(), a.meCmd(), a.recipesCmd(), a.facetsCmd())
	return root
}

func (a *app) connect() error {
	// The CLI has no notion of user activity, so sessions never idle out.
	session := client.NewSession(client.NewFileStore(a.tokenFile), client.SessionOptions{})
	if _, err := session.Resume(); err != nil {
		return err
	}
	c, err := client.New(a.server, session)
	if err != nil {
		return err
	}
	a.client = c
	return nil
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", user.FullName)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("RECIPECTL_PASSWORD"), "Account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(user)
		},
	}
}

func (a *app) recipesCmd() *cobra.Command {
	recipes := &cobra.Command{
		Use:   "recipes",
		Short: "Browse recipes",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "Search and filter recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.client.ListRecipes(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	f := list.Flags()
	f.StringVar(&opts.Search, "search", "", "Match recipe or ingredient names")
	f.StringVar(&opts.CourseType, "course-type", "", "Course type")
	f.StringVar(&opts.RecipeType, "recipe-type", "", "Recipe type")
	f.StringVar(&opts.PrimaryProtein, "protein", "", "Primary protein")
	f.StringVar(&opts.EthnicStyle, "style", "", "Ethnic style")
	f.StringVar(&opts.TimeNeeded, "time", "", "Time bucket, for example less_than_30")
	f.IntVar(&opts.MinServings, "servings", 0, "Minimum number of servings")
	f.StringVar(&opts.UploadedBy, "uploaded-by", "", "Creator user id")
	f.StringVar(&opts.Ordering, "ordering", "", "Sort key, prefix with - for descending")
	f.IntVar(&opts.Page, "page", 0, "Page number")
	f.IntVar(&opts.PageSize, "page-size", 0, "Results per page")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one recipe with its sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := a.client.GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(recipe)
		},
	}

	comments := &cobra.Command{
		Use:   "comments ID",
		Short: "List the comments of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.ListComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}

	recipes.AddCommand(list, get, comments)
	return recipes
}

func (a *app) facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the allowed facet values",
		RunE: func(cmd *cobra.Command, args []string) error {
			facets, err := a.client.Facets(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(facets)
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recipectl", "tokens.json")
}

