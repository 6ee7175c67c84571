// Package cli is the device command line: register, sign in, browse
// the listing feed and manage your own listings. It talks to the
// remote service when reachable and falls back to the on-device cache
// when it is not.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/projboard/projboard/internal/client/api"
	"github.com/projboard/projboard/internal/client/store"
	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/internal/listing"
)

type App struct {
	stores *store.Stores
	api    *api.Client
	out    io.Writer
}

func NewApp(ctx context.Context, dbPath, serverURL string, out io.Writer) (*App, error) {
	stores, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return &App{stores: stores, api: api.New(serverURL), out: out}, nil
}

func (a *App) Close() error { return a.stores.Close() }

// Run dispatches one subcommand. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `usage: projboard-client <command> [flags]

commands:
  register  -name -email -password [-phone]   create an account
  login     -email -password                  sign in
  logout                                      sign out
  whoami                                      show the signed-in account
  add       -title -desc -price [-party]      post a listing
  list      [-search] [-sort]                 browse the feed
  remove    -id                               delete your listing
  help                                        show this help`)
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 6 chars)")
	phone := fs.String("phone", "", "contact phone")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.api.Register(ctx, *name, *email, *password, *phone)
	switch {
	case err == nil:
		// Mirror the account locally so offline sign-in works.
		if _, cerr := a.stores.Credentials.Create(ctx, p.Name, p.Email, *password, *phone); cerr != nil && !errors.Is(cerr, store.ErrDuplicateEmail) {
			return cerr
		}
		fmt.Fprintf(a.out, "account created for %s\n", p.Email)
		return nil
	case errors.Is(err, api.ErrDuplicateEmail):
		return errors.New("that email is already registered")
	case errors.Is(err, api.ErrRemoteUnavailable):
		if _, cerr := a.stores.Credentials.Create(ctx, *name, *email, *password, *phone); cerr != nil {
			return cerr
		}
		fmt.Fprintln(a.out, "offline: account created locally, will exist on the server after first online sign-in")
		return nil
	default:
		return err
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.api.Login(ctx, *email, *password)
	switch {
	case err == nil:
		if serr := a.stores.Session.SaveSession(ctx, store.Session{Name: p.Name, Email: p.Email, Phone: p.Phone}); serr != nil {
			return serr
		}
		fmt.Fprintf(a.out, "signed in as %s\n", p.Name)
		return nil
	case errors.Is(err, api.ErrInvalidCredentials):
		return errors.New("invalid credentials")
	case errors.Is(err, api.ErrRemoteUnavailable):
		acc, aerr := a.stores.Credentials.Authenticate(ctx, *email, *password)
		if aerr != nil {
			return errors.New("invalid credentials")
		}
		if serr := a.stores.Session.SaveSession(ctx, store.Session{Name: acc.Name, Email: acc.Email, Phone: acc.Phone}); serr != nil {
			return serr
		}
		fmt.Fprintf(a.out, "offline: signed in as %s\n", acc.Name)
		return nil
	default:
		return err
	}
}

func (a *App) logout(ctx context.Context) error {
	// Best effort: the local session goes away even when the server
	// cannot be reached.
	_ = a.api.Logout(ctx)
	if err := a.stores.Session.ClearSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	sess, err := a.stores.Session.LoadSession(ctx)
	if err != nil {
		return err
	}
	if sess.Email == "" {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>", sess.Name, sess.Email)
	if sess.Phone != "" {
		fmt.Fprintf(a.out, " %s", sess.Phone)
	}
	fmt.Fprintln(a.out)
	// Only the hash is ever stored, so the mask has a fixed width.
	fmt.Fprintln(a.out, "password: ********")
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	title := fs.String("title", "", "listing title")
	desc := fs.String("desc", "", "description")
	price := fs.String("price", "", `price, pt-BR format ("1.500,00")`)
	party := fs.String("party", "", "party size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	l, err := a.api.CreateListing(ctx, *title, *desc, *price, *party)
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "listing %s created\n", l.ID)
		return nil
	case errors.Is(err, api.ErrRemoteUnavailable), errors.Is(err, api.ErrUnauthorized):
		size, _ := strconv.Atoi(*party)
		if size < 1 {
			size = 1
		}
		cached, cerr := a.stores.Listings.Append(ctx, entity.Listing{
			Title:        *title,
			Description:  *desc,
			DisplayPrice: *price,
			Price:        listing.ParsePrice(*price),
			PartySize:    size,
			OwnerName:    sess.Name,
			OwnerEmail:   sess.Email,
			OwnerPhone:   sess.Phone,
			CreatedAt:    time.Now(),
		})
		if cerr != nil {
			return cerr
		}
		fmt.Fprintf(a.out, "offline: listing %s cached locally\n", cached.ID)
		return nil
	default:
		return err
	}
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.out)
	search := fs.String("search", "", "filter titles by substring")
	sortFlag := fs.String("sort", "", "most_recent | highest_value | lowest_value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mode := listing.ParseSortMode(*sortFlag)

	items, err := a.api.FetchListings(ctx, *search, string(mode))
	switch {
	case err == nil:
		// Refresh the offline cache with the authoritative feed.
		if cerr := a.stores.Listings.ReplaceAll(ctx, items); cerr != nil {
			return cerr
		}
	case errors.Is(err, api.ErrRemoteUnavailable):
		cached, cerr := a.stores.Listings.LoadAll(ctx)
		if cerr != nil {
			return cerr
		}
		items = listing.Query(cached, *search, mode)
		fmt.Fprintln(a.out, "offline: showing cached listings")
	default:
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "no listings")
		return nil
	}
	for _, l := range items {
		fmt.Fprintf(a.out, "%s  %-30s  R$ %-12s  %s  (%s)\n",
			l.ID, l.Title, l.DisplayPrice, l.OwnerName, l.DisplayDate())
	}
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.String("id", "", "listing id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	err := a.api.DeleteListing(ctx, *id)
	switch {
	case err == nil:
	case errors.Is(err, api.ErrNotOwner):
		return errors.New("that listing belongs to someone else")
	case errors.Is(err, api.ErrNotFound):
		return errors.New("listing not found")
	case errors.Is(err, api.ErrRemoteUnavailable), errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(a.out, "offline: removed from the local cache only")
	default:
		return err
	}
	if err := a.stores.Listings.Remove(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "listing removed")
	return nil
}

func (a *App) requireSession(ctx context.Context) (*store.Session, error) {
	sess, err := a.stores.Session.LoadSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Email == "" {
		return nil, errors.New("sign in first")
	}
	return sess, nil
}
