// shopctl is a command-line client for the storefront and management console
// APIs. Credentials persist across runs, so a login survives until logout or
// until the backend finally rejects a refresh.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/ShopfrontGo/internal/api"
	"github.com/utafrali/ShopfrontGo/internal/app"
	"github.com/utafrali/ShopfrontGo/internal/config"
	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/pkg/logger"
	"github.com/utafrali/ShopfrontGo/pkg/pagination"
)

const usage = `usage: shopctl <command> [flags]

commands:
  login       -email EMAIL -password PASSWORD [-admin]
  logout      [-admin]
  whoami      [-admin]
  products    list [-page N] [-q QUERY] | get ID | delete ID
  categories  list
  promotions  list
  inventory   [-page N] [-sku SKU]
  orders      list [-page N] | get ID
  revenue     [-days N]
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shopctl:", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New("shopctl", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "login":
		return runLogin(ctx, a, args)
	case "logout":
		return runLogout(ctx, a, args)
	case "whoami":
		return runWhoami(ctx, a, args)
	case "products":
		return runProducts(ctx, a, args)
	case "categories":
		return runCategories(ctx, a)
	case "promotions":
		return runPromotions(ctx, a)
	case "inventory":
		return runInventory(ctx, a, args)
	case "orders":
		return runOrders(ctx, a, args)
	case "revenue":
		return runRevenue(ctx, a, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	admin := fs.Bool("admin", false, "log in to the management console")
	_ = fs.Parse(args)

	controller := a.Customer
	if *admin {
		controller = a.Admin
	}

	ok, err := controller.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("account does not have management console access")
	}

	fmt.Println("logged in")
	return nil
}

func runLogout(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	admin := fs.Bool("admin", false, "log out of the management console")
	_ = fs.Parse(args)

	controller := a.Customer
	if *admin {
		controller = a.Admin
	}

	if err := controller.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	admin := fs.Bool("admin", false, "show the management console session")
	_ = fs.Parse(args)

	controller := a.Customer
	if *admin {
		controller = a.Admin
	}

	profile, ok := controller.Profile(ctx)
	if !ok {
		return fmt.Errorf("no active session")
	}
	return printJSON(profile)
}

func runProducts(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("products: missing subcommand (list, get, delete)")
	}
	a.Navigator.Visit("/admin/products")

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("products list", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		query := fs.String("q", "", "search query")
		_ = fs.Parse(args[1:])

		params := pagination.DefaultParams()
		params.Page = *page
		result, err := a.Products.List(ctx, params, api.ProductFilter{Query: *query})
		if err != nil {
			return err
		}
		return printJSON(result)

	case "get":
		if len(args) < 2 {
			return fmt.Errorf("products get: missing product id")
		}
		product, err := a.Products.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(product)

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("products delete: missing product id")
		}
		// Management operations run pinned to the admin session.
		if err := a.Products.Delete(session.WithScope(ctx, session.ScopeAdmin), args[1]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil

	default:
		return fmt.Errorf("products: unknown subcommand %q", args[0])
	}
}

func runCategories(ctx context.Context, a *app.App) error {
	categories, err := a.Categories.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(categories)
}

func runPromotions(ctx context.Context, a *app.App) error {
	a.Navigator.Visit("/admin/promotions")
	promotions, err := a.Promotions.List(session.WithScope(ctx, session.ScopeAdmin))
	if err != nil {
		return err
	}
	return printJSON(promotions)
}

func runInventory(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("inventory", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	sku := fs.String("sku", "", "filter by SKU")
	_ = fs.Parse(args)

	a.Navigator.Visit("/admin/inventory")
	params := pagination.DefaultParams()
	params.Page = *page

	levels, err := a.Inventory.Levels(session.WithScope(ctx, session.ScopeAdmin), params, *sku)
	if err != nil {
		return err
	}
	return printJSON(levels)
}

func runOrders(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("orders: missing subcommand (list, get)")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("orders list", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args[1:])

		params := pagination.DefaultParams()
		params.Page = *page
		orders, err := a.Orders.List(ctx, params)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "get":
		if len(args) < 2 {
			return fmt.Errorf("orders get: missing order id")
		}
		order, err := a.Orders.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(order)

	default:
		return fmt.Errorf("orders: unknown subcommand %q", args[0])
	}
}

func runRevenue(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("revenue", flag.ExitOnError)
	days := fs.Int("days", 30, "date range in days")
	_ = fs.Parse(args)

	a.Navigator.Visit("/admin/revenue")
	ctx = session.WithScope(ctx, session.ScopeAdmin)

	to := time.Now()
	from := to.AddDate(0, 0, -*days)

	summary, err := a.Stats.Summary(ctx, from, to)
	if err != nil {
		return err
	}
	series, err := a.Stats.Series(ctx, from, to, "day")
	if err != nil {
		return err
	}

	return printJSON(map[string]any{"summary": summary, "series": series})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
