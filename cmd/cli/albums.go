package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"albumhub/internal/albumio"
	"albumhub/pkg/models"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		q      listQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			albums, err := ctx.client().listAlbums(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), albums)
			}
			return printAlbums(cmd.OutOrStdout(), albums)
		},
	}
	cmd.Flags().StringVar(&q.Genre, "genre", "", "only albums with this genre")
	cmd.Flags().StringVar(&q.Date, "date", "", "only albums released on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "search artist and title")
	cmd.Flags().IntVarP(&q.Page, "page", "p", 0, "page index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.client().getAlbum(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List every stored genre",
		RunE: func(cmd *cobra.Command, args []string) error {
			genres, err := ctx.client().genres(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range genres {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		q   listQuery
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every matching album to a .json or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			albums, err := ctx.client().allAlbums(cmd.Context(), q)
			if err != nil {
				return err
			}
			if err := albumio.WriteFile(out, albums); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d albums to %s\n", len(albums), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "data/albums.json", "output path (.json or .csv)")
	cmd.Flags().StringVar(&q.Genre, "genre", "", "only albums with this genre")
	cmd.Flags().StringVar(&q.Date, "date", "", "only albums released on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "search artist and title")
	return cmd
}

func printAlbums(w io.Writer, albums []models.Album) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tARTIST\tTITLE\tGENRES\tID")
	for _, a := range albums {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.DateString(), a.Artist, a.Title, strings.Join(a.Genres, ", "), a.ID)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
