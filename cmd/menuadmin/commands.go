// cmd/menuadmin/commands.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/blocks"
	"github.com/deploymenttheory/go-menu-admin-client/response"
)

// EnvPassword supplies the login password when -p is omitted.
const EnvPassword = "MENUADMIN_PASSWORD"

const previewRunes = 60

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(EnvPassword)
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("%w: login requires -u and -p (or %s)", errUsage, EnvPassword)
	}

	if _, err := a.auth.Login(ctx, *username, *password); err != nil {
		if response.IsUnauthorized(err) {
			return errors.New("login rejected: invalid username or password")
		}
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", *username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		// tokens are gone locally even when the backend call failed
		fmt.Fprintln(a.out, "Local session cleared")
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := newFlagSet("status")
	refresh := fs.Bool("refresh", false, "exchange the refresh token for a new access token first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *refresh {
		if err := a.client.RefreshTokens(ctx); err != nil {
			return err
		}
	}

	st, err := a.auth.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Access token:\t%s\n", presence(st.HasAccessToken))
	fmt.Fprintf(w, "Refresh token:\t%s\n", presence(st.HasRefreshToken))
	if st.Claims != nil {
		if st.Claims.Subject != "" {
			fmt.Fprintf(w, "Subject:\t%s\n", st.Claims.Subject)
		}
		if st.Claims.HasExpiry() {
			fmt.Fprintf(w, "Expires:\t%s (in %s)\n",
				st.Claims.ExpiresAt.Format(time.RFC3339), st.Claims.ExpiresIn(time.Now()).Round(time.Second))
		}
	}
	return w.Flush()
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}

func (a *app) users(ctx context.Context) error {
	list, err := a.employees.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTELEGRAM\tTELEGRAM ID\tBLOCKED\tCREATED")
	for _, e := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%s\n", e.ID, e.TgName, e.TgID, e.Blocked(), e.CreatedAt)
	}
	return w.Flush()
}

func (a *app) searchStats(ctx context.Context) error {
	report, err := a.stats.Both(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOP QUERIES\tCOUNT")
	for _, s := range report.Top {
		fmt.Fprintf(w, "%s\t%d\n", s.Query, s.Count)
	}
	fmt.Fprintln(w, "\t")
	fmt.Fprintln(w, "WORST QUERIES\tCOUNT")
	for _, s := range report.Worst {
		fmt.Fprintf(w, "%s\t%d\n", s.Query, s.Count)
	}
	return w.Flush()
}

func (a *app) blocksCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: blocks requires a subcommand", errUsage)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		return a.blocksList(ctx, rest)
	case "tree":
		return a.blocksTree(ctx)
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("%w: blocks get ID", errUsage)
		}
		return a.blocksGet(ctx, rest[0])
	case "visibility":
		if len(rest) != 2 {
			return fmt.Errorf("%w: blocks visibility ID true|false", errUsage)
		}
		searchable, err := strconv.ParseBool(rest[1])
		if err != nil {
			return fmt.Errorf("%w: visibility must be true or false", errUsage)
		}
		return a.blocksVisibility(ctx, rest[0], searchable)
	case "move":
		if len(rest) != 2 {
			return fmt.Errorf("%w: blocks move SOURCE TARGET", errUsage)
		}
		return a.blocksMove(ctx, rest[0], rest[1])
	default:
		return fmt.Errorf("%w: unknown blocks subcommand %q", errUsage, sub)
	}
}

func (a *app) blocksList(ctx context.Context, args []string) error {
	fs := newFlagSet("blocks list")
	var q blocks.Query
	fs.StringVar(&q.Search, "search", "", "case-insensitive text filter")
	fs.StringVar(&q.ParentID, "parent", "", "block id, or \"root\" for top-level blocks")
	fs.BoolVar(&q.OnlySearchable, "searchable", false, "only blocks visible in search")
	fs.StringVar(&q.SortKey, "sort", blocks.SortByCreatedAt, "title, created_at or is_searchable")
	fs.BoolVar(&q.Ascending, "asc", false, "ascending order")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.PageSize, "size", blocks.DefaultPageSize, "blocks per page")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	all, err := a.blocks.List(ctx)
	if err != nil {
		return err
	}
	page := blocks.Apply(blocks.Normalize(all), q)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPARENT\tSEARCHABLE\tCREATED")
	for _, b := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", b.ID, b.Title, orDash(b.Parent()), b.Searchable(), b.CreatedAt)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d blocks)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func (a *app) blocksTree(ctx context.Context) error {
	all, err := a.blocks.List(ctx)
	if err != nil {
		return err
	}

	blocks.Walk(blocks.BuildTree(blocks.Normalize(all)), func(n *blocks.Node, depth int) {
		marker := ""
		if !n.Block.Searchable() {
			marker = " [hidden]"
		}
		fmt.Fprintf(a.out, "%s%s (%s)%s\n", strings.Repeat("  ", depth), n.Block.Title, n.Block.ID, marker)
	})
	return nil
}

func (a *app) blocksGet(ctx context.Context, id string) error {
	b, err := a.blocks.Get(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", b.ID)
	fmt.Fprintf(w, "Title:\t%s\n", b.Title)
	fmt.Fprintf(w, "Parent:\t%s\n", orDash(b.Parent()))
	fmt.Fprintf(w, "Searchable:\t%t\n", b.Searchable())
	if b.Link != nil {
		fmt.Fprintf(w, "Link:\t%s\n", *b.Link)
	}
	if len(b.Tags) > 0 {
		fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(b.Tags, ", "))
	}
	if b.Description != nil {
		fmt.Fprintf(w, "Description:\t%s\n", blocks.Preview(*b.Description, previewRunes))
	}
	if b.TextContent != nil {
		fmt.Fprintf(w, "Text:\t%s\n", blocks.Preview(*b.TextContent, previewRunes))
	}
	fmt.Fprintf(w, "Created:\t%s\n", b.CreatedAt)
	fmt.Fprintf(w, "Updated:\t%s\n", orDash(b.UpdatedAt))
	return w.Flush()
}

func (a *app) blocksVisibility(ctx context.Context, id string, searchable bool) error {
	if err := a.blocks.SetSearchVisibility(ctx, id, searchable); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Block %s searchable: %t\n", id, searchable)
	return nil
}

func (a *app) blocksMove(ctx context.Context, sourceID, targetID string) error {
	all, err := a.blocks.List(ctx)
	if err != nil {
		return err
	}

	moved, ok := blocks.Move(blocks.Normalize(all), sourceID, targetID)
	if !ok {
		return fmt.Errorf("cannot move %s to %s: unknown block or same position", sourceID, targetID)
	}

	a.blocks.Reorder(ctx, blocks.IDs(moved))
	for i, b := range moved {
		fmt.Fprintf(a.out, "%d. %s (%s)\n", i+1, b.Title, b.ID)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
