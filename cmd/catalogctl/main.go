// Command catalogctl is a terminal client for the catalog API.
//
//	catalogctl login -u admin1 -p admin123
//	catalogctl products -search lap
//	catalogctl add-product -name Monitor -price 249.50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/Skotchmaster/catalog/internal/apiclient"
	"github.com/Skotchmaster/catalog/pkg/config"
)

const usage = `usage: catalogctl <command> [flags]

commands:
  login -u USER -p PASSWORD
  logout
  whoami
  products [-search TEXT]
  add-product -name NAME -price PRICE [-description TEXT]

environment:
  CATALOG_API_URL   API base URL (default http://localhost:3001)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tokens, err := apiclient.DefaultFileTokenStore("catalogctl")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client := apiclient.NewClient(config.EnvDefault("CATALOG_API_URL", "http://localhost:3001"), tokens)

	if err := run(ctx, client, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, c *apiclient.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "login":
		user := fs.String("u", "", "username")
		pass := fs.String("p", "", "password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		sess, err := c.Login(ctx, *user, *pass)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "logged in as %s (%s), session valid until %s\n",
			sess.User.Username, sess.User.Role, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil

	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "logged out")
		return nil

	case "whoami":
		id, err := c.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s) id=%s\n", id.Username, id.Role, id.ID)
		return nil

	case "products":
		search := fs.String("search", "", "filter by name or description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		items, err := c.Products(ctx, *search)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "no products found")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
		for _, p := range items {
			fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%s\n", p.ID, p.Name, p.Price, p.Description)
		}
		return tw.Flush()

	case "add-product":
		name := fs.String("name", "", "product name")
		price := fs.String("price", "", "price in dollars")
		desc := fs.String("description", "", "optional description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		p, err := c.CreateProduct(ctx, *name, *price, *desc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "created %s (id %s) at $%.2f\n", p.Name, p.ID, p.Price)
		return nil

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	fmt.Fprint(out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func describe(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		return "your session has expired, run: catalogctl login"
	case errors.Is(err, apiclient.ErrNotLoggedIn):
		return "not logged in, run: catalogctl login"
	case errors.Is(err, apiclient.ErrAdminOnly):
		return "only admins can add products"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return err.Error()
}
