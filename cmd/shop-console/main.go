// shop-console is the interactive storefront client: browse the catalog,
// accumulate a cart, check out against live inventory, follow and cancel
// orders, and (as ADMIN) manage catalog entries and watch the dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/api"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/auth"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/cart"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/catalog"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/checkout"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/config"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/logging"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/orders"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/policy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shop-console:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = pflag.String("config", "", "path to YAML config file")
		baseURL    = pflag.String("base-url", "", "backend base URL (overrides config)")
		token      = pflag.String("token", "", "bearer token (overrides config)")
		tokenFile  = pflag.String("token-file", "", "file holding the bearer token")
		redisAddr  = pflag.String("redis-addr", "", "redis address for the shared catalog cache")
		logLevel   = pflag.String("log-level", "", "debug|info|warn|error")
		logFile    = pflag.String("log-file", "", "rotating log file path")
		trace      = pflag.Bool("trace", false, "emit traces to stdout")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Backend.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Auth.Token = *token
		cfg.Auth.TokenFile = ""
	}
	if *tokenFile != "" {
		cfg.Auth.TokenFile = *tokenFile
		cfg.Auth.Token = ""
	}
	if *redisAddr != "" {
		cfg.Redis.Addr = *redisAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *trace {
		cfg.Trace.Enabled = true
	}

	log := logging.Init(cfg.Log.Level, cfg.Log.File)
	ctx := context.Background()

	if cfg.Trace.Enabled {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(tp)
		defer tp.Shutdown(ctx)
	}

	raw, err := cfg.BearerToken()
	if err != nil {
		return err
	}
	session, err := auth.NewTokenSession(raw)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.Backend.BaseURL, session, api.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		return err
	}

	var cache catalog.Cache = catalog.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		cache = catalog.NewRedisCache(rdb)
	}

	store := catalog.NewStore(client, cache, log)
	c := &console{
		log:     log,
		session: session,
		client:  client,
		store:   store,
		cart:    cart.New(),
		orders:  orders.NewManager(client, session),
		submit:  checkout.NewCoordinator(client, store, log),
		out:     os.Stdout,
	}

	fmt.Fprintf(c.out, "connected to %s as %s (%s)\n", cfg.Backend.BaseURL, session.Subject(), session.Role())
	c.printHelp()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		c.dispatch(ctx, strings.Fields(line))
	}
}

type console struct {
	log     *slog.Logger
	session auth.Session
	client  *api.Client
	store   *catalog.Store
	cart    *cart.Cart
	orders  *orders.Manager
	submit  *checkout.Coordinator
	out     *os.File
}

func (c *console) dispatch(ctx context.Context, args []string) {
	role := c.session.Role()
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		c.printHelp()
	case "products":
		c.listProducts(ctx)
	case "product":
		c.showProduct(ctx, rest)
	case "refresh":
		if _, err := c.store.Refresh(ctx); err != nil {
			c.fail("refresh failed", err)
			return
		}
		c.listProducts(ctx)
	case "add":
		c.addToCart(ctx, rest)
	case "rm":
		c.removeFromCart(rest)
	case "cart":
		c.showCart()
	case "checkout":
		c.checkout(ctx)
	case "orders":
		c.listOrders(ctx)
	case "order":
		c.showOrder(ctx, rest)
	case "cancel":
		c.cancelOrder(ctx, rest)
	case "stats":
		c.showStats(ctx)
	case "new", "edit", "delete":
		if !policy.Can(role, policy.ActionCreateProduct, "") {
			fmt.Fprintln(c.out, "catalog management requires the ADMIN role")
			return
		}
		c.manageCatalog(ctx, cmd, rest)
	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", cmd)
	}
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, "commands: products | product <id> | refresh | orders | order <id> | stats | help | quit")
	role := c.session.Role()
	if policy.Can(role, policy.ActionAddToCart, "") {
		fmt.Fprintln(c.out, "shopping: add <id> | rm <id> | cart | checkout | cancel <order-id>")
	}
	if policy.Can(role, policy.ActionCreateProduct, "") {
		fmt.Fprintln(c.out, "admin:    new <name> <price> <stock> [description] | edit <id> <name> <price> <stock> | delete <id>")
	}
}

func (c *console) listProducts(ctx context.Context) {
	products, err := c.store.List(ctx)
	if err != nil {
		c.fail("could not load the catalog", err)
		return
	}
	if len(products) == 0 {
		fmt.Fprintln(c.out, "the catalog is empty")
		return
	}
	for _, p := range products {
		fmt.Fprintf(c.out, "  #%-4d %-24s %8.2f DH  stock %d\n", p.ID, p.Name, p.Price, p.StockQuantity)
	}
}

func (c *console) showProduct(ctx context.Context, args []string) {
	id, ok := parseID(c.out, args)
	if !ok {
		return
	}
	p, err := c.client.GetProduct(ctx, id)
	if err != nil {
		c.fail("could not load product", err)
		return
	}
	fmt.Fprintf(c.out, "#%d %s\n  price %.2f DH, stock %d\n", p.ID, p.Name, p.Price, p.StockQuantity)
	if p.Description != "" {
		fmt.Fprintf(c.out, "  %s\n", p.Description)
	}
}

func (c *console) addToCart(ctx context.Context, args []string) {
	if !policy.Can(c.session.Role(), policy.ActionAddToCart, "") {
		fmt.Fprintln(c.out, "admins do not shop; the cart is for clients")
		return
	}
	id, ok := parseID(c.out, args)
	if !ok {
		return
	}
	products, err := c.store.List(ctx)
	if err != nil {
		c.fail("could not load the catalog", err)
		return
	}
	for _, p := range products {
		if p.ID != id {
			continue
		}
		if err := c.cart.Add(p); err != nil {
			if errors.Is(err, cart.ErrOutOfStock) {
				fmt.Fprintf(c.out, "%s is out of stock\n", p.Name)
				return
			}
			c.fail("could not add to cart", err)
			return
		}
		fmt.Fprintf(c.out, "added %s (cart: %d items)\n", p.Name, c.cart.TotalQuantity())
		return
	}
	fmt.Fprintf(c.out, "no product #%d in the catalog\n", id)
}

func (c *console) removeFromCart(args []string) {
	id, ok := parseID(c.out, args)
	if !ok {
		return
	}
	if !c.cart.Decrement(id) {
		fmt.Fprintf(c.out, "product #%d is not in the cart\n", id)
	}
}

func (c *console) showCart() {
	if c.cart.Empty() {
		fmt.Fprintln(c.out, "the cart is empty")
		return
	}
	for _, l := range c.cart.Lines() {
		fmt.Fprintf(c.out, "  %dx %-24s %8.2f DH\n", l.Quantity, l.NameAtAdd, l.PriceAtAdd*float64(l.Quantity))
	}
	fmt.Fprintf(c.out, "  total %.2f DH (%d items)\n", c.cart.Total(), c.cart.TotalQuantity())
}

func (c *console) checkout(ctx context.Context) {
	if !policy.Can(c.session.Role(), policy.ActionCheckout, "") {
		fmt.Fprintln(c.out, "checkout is for clients")
		return
	}
	res, err := c.submit.Submit(ctx, c.cart)
	if err != nil {
		if errors.Is(err, checkout.ErrSubmitInFlight) {
			fmt.Fprintln(c.out, "a submission is already in progress")
			return
		}
		c.fail("checkout failed", err)
		return
	}
	switch res.Outcome {
	case checkout.OutcomeEmptyCart:
		fmt.Fprintln(c.out, "the cart is empty; nothing to submit")
	case checkout.OutcomeOK:
		fmt.Fprintf(c.out, "order #%d confirmed, total %.2f DH; stock has been updated\n", res.Order.ID, res.Order.TotalAmount)
	case checkout.OutcomeStockConflict:
		fmt.Fprintln(c.out, "the backend rejected the order (insufficient stock); your cart is unchanged, adjust and retry")
	case checkout.OutcomeForbidden:
		fmt.Fprintln(c.out, "your role may not submit orders")
	case checkout.OutcomeUnavailable:
		fmt.Fprintln(c.out, "the shop is unreachable; your cart is unchanged, try again later")
	}
}

func (c *console) listOrders(ctx context.Context) {
	list, err := c.orders.List(ctx)
	if err != nil {
		c.fail("could not load orders", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "no orders yet")
		return
	}
	for _, o := range list {
		fmt.Fprintf(c.out, "  #%-5d %-10s %10.2f DH  %s\n", o.ID, o.Status, o.TotalAmount, o.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (c *console) showOrder(ctx context.Context, args []string) {
	id, ok := parseID(c.out, args)
	if !ok {
		return
	}
	o, err := c.client.GetOrder(ctx, id)
	if err != nil {
		c.fail("could not load order", err)
		return
	}
	fmt.Fprintf(c.out, "order #%d  %s  customer %s\n", o.ID, o.Status, o.CustomerID)
	for _, it := range o.ProductItems {
		name := it.ProductName
		if name == "" {
			name = fmt.Sprintf("product #%d", it.ProductID)
		}
		fmt.Fprintf(c.out, "  %dx %-24s %8.2f DH\n", it.Quantity, name, it.Price*float64(it.Quantity))
	}
	fmt.Fprintf(c.out, "  total %.2f DH\n", o.TotalAmount)
}

func (c *console) cancelOrder(ctx context.Context, args []string) {
	id, ok := parseID(c.out, args)
	if !ok {
		return
	}
	list, err := c.orders.List(ctx)
	if err != nil {
		c.fail("could not load orders", err)
		return
	}
	for _, o := range list {
		if o.ID != id {
			continue
		}
		if err := c.orders.Cancel(ctx, o); err != nil {
			c.fail("cannot cancel", err)
			return
		}
		// Authoritative state comes from the refetch, never a local patch.
		fmt.Fprintln(c.out, "cancellation accepted")
		c.listOrders(ctx)
		return
	}
	fmt.Fprintf(c.out, "no order #%d in your history\n", id)
}

func (c *console) showStats(ctx context.Context) {
	stats, err := c.orders.Stats(ctx)
	if err != nil {
		c.fail("could not load stats", err)
		return
	}
	switch {
	case stats.Admin != nil:
		fmt.Fprintf(c.out, "revenue %.2f DH across %d orders; %d products low on stock\n",
			stats.Admin.Orders.TotalRevenue, stats.Admin.Orders.TotalOrders, stats.Admin.Products.LowStock)
	case stats.Customer != nil:
		fmt.Fprintf(c.out, "you spent %.2f DH over %d orders (%d active)\n",
			stats.Customer.Spent, stats.Customer.Count, stats.Customer.Active)
	}
}

func (c *console) manageCatalog(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "new":
		if len(args) < 3 {
			fmt.Fprintln(c.out, "usage: new <name> <price> <stock> [description]")
			return
		}
		price, err1 := strconv.ParseFloat(args[1], 64)
		stock, err2 := strconv.Atoi(args[2])
		if err1 != nil || err2 != nil {
			fmt.Fprintln(c.out, "price and stock must be numbers")
			return
		}
		p := domain.Product{Name: args[0], Price: price, StockQuantity: stock, Description: strings.Join(args[3:], " ")}
		created, err := c.client.CreateProduct(ctx, p)
		if err != nil {
			c.fail("create failed", err)
			return
		}
		fmt.Fprintf(c.out, "created product #%d\n", created.ID)
	case "edit":
		if len(args) < 4 {
			fmt.Fprintln(c.out, "usage: edit <id> <name> <price> <stock>")
			return
		}
		id, err0 := strconv.ParseInt(args[0], 10, 64)
		price, err1 := strconv.ParseFloat(args[2], 64)
		stock, err2 := strconv.Atoi(args[3])
		if err0 != nil || err1 != nil || err2 != nil {
			fmt.Fprintln(c.out, "id, price and stock must be numbers")
			return
		}
		p := domain.Product{ID: id, Name: args[1], Price: price, StockQuantity: stock}
		if _, err := c.client.UpdateProduct(ctx, p); err != nil {
			c.fail("update failed", err)
			return
		}
		fmt.Fprintf(c.out, "updated product #%d\n", id)
	case "delete":
		id, ok := parseID(c.out, args)
		if !ok {
			return
		}
		if err := c.client.DeleteProduct(ctx, id); err != nil {
			c.fail("delete failed", err)
			return
		}
		fmt.Fprintf(c.out, "deleted product #%d\n", id)
	}
	// Catalog changed server-side; the snapshot is stale until refreshed.
	if _, err := c.store.Refresh(ctx); err != nil {
		c.log.Warn("catalog refresh after admin action failed", "error", err)
	}
}

// fail prints a message tailored to the failure kind, so an outage, a
// rejection and a permission problem read differently.
func (c *console) fail(prefix string, err error) {
	switch {
	case errors.Is(err, api.ErrForbidden):
		fmt.Fprintf(c.out, "%s: your role is not allowed to do this\n", prefix)
	case errors.Is(err, api.ErrNotFound):
		fmt.Fprintf(c.out, "%s: it no longer exists (refresh and retry)\n", prefix)
	case errors.Is(err, api.ErrConflict):
		fmt.Fprintf(c.out, "%s: the backend rejected the request (%v)\n", prefix, err)
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintf(c.out, "%s: the shop is unreachable right now\n", prefix)
	default:
		fmt.Fprintf(c.out, "%s: %v\n", prefix, err)
	}
	c.log.Debug(prefix, "error", err)
}

func parseID(out *os.File, args []string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintln(out, "expected exactly one id")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "%q is not a valid id\n", args[0])
		return 0, false
	}
	return id, true
}
