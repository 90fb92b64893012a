package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/orders"
	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
)

// A line-oriented walk through the ordering core: the same menu index, cart
// and session machinery the API serves, driven from a terminal.

const helpText = `commands:
  menu                 show the menu
  search <text>        fuzzy-search the menu
  add <item>           add an item (append "| <size>" to pick a size)
  sauce <name>         pick a sauce for the current item
  topping <name>       add a topping
  remove <item>        remove an item from the cart
  qty <item> <n>       change an item's quantity
  cart                 show the cart
  name <name>          set the customer name
  phone <number>       set the customer phone
  checkout             place the order
  quit`

func main() {
	godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "demo", Level: zerolog.ErrorLevel})

	menuSvc, submitter := bootstrap(logg)

	registry := session.NewRegistry(resolver{svc: menuSvc}, 0, nil)
	sess := registry.Get(uuid.NewString())

	finalizer, err := orders.NewFinalizer(submitter, logg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}

	fmt.Println("Welcome to the pizza line. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(command) {
		case "quit", "exit":
			return
		case "help":
			fmt.Println(helpText)
		case "menu":
			summary, err := menuSvc.Summary(10)
			respond(summary, err)
		case "search":
			doSearch(menuSvc, rest)
		case "add":
			doAdd(menuSvc, sess, rest)
		case "sauce":
			doCustomize(sess, "Sauce", rest)
		case "topping":
			doCustomize(sess, "Toppings", rest)
		case "remove":
			if removed, ok := sess.RemoveItem(rest); ok {
				fmt.Printf("Removed %s.\n", removed.DisplayName)
			} else {
				fmt.Printf("I couldn't find %q in your cart.\n", rest)
			}
		case "qty":
			doQuantity(sess, rest)
		case "cart":
			fmt.Println(sess.Summary())
		case "name":
			sess.SetCustomer(rest, "")
			fmt.Printf("Thanks, %s.\n", rest)
		case "phone":
			sess.SetCustomer("", rest)
			fmt.Println("Got it.")
		case "checkout":
			doCheckout(finalizer, sess)
		default:
			fmt.Println("Unknown command. Type 'help' for commands.")
		}
	}
}

type resolver struct {
	svc *menu.Service
}

func (r resolver) ItemByID(id menu.ItemID) *menu.Item {
	item, err := r.svc.ItemByID(id)
	if err != nil {
		return nil
	}
	return item
}

// bootstrap loads the live catalog when one is configured and falls back to
// a small built-in menu so the demo works offline.
func bootstrap(logg *logger.Logger) (*menu.Service, orders.Submitter) {
	if cfg, err := config.Load(); err == nil {
		svc, err := menu.NewService(menu.NewCatalogClient(cfg.Catalog), nil, logg, nil)
		if err == nil && svc.Load(context.Background()) == nil {
			return svc, orders.NewHTTPSubmitter(cfg.Catalog)
		}
		fmt.Println("Couldn't reach the catalog, using the built-in menu.")
	}

	svc, err := menu.NewService(staticFetcher{}, nil, logg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}
	if err := svc.Load(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}
	return svc, nil
}

type staticFetcher struct{}

func (staticFetcher) FetchMenu(context.Context) ([]menu.Item, error) {
	price := decimal.RequireFromString
	return []menu.Item{
		{
			ID: "1", Name: "Margherita Pizza", Category: "Pizza", BasePrice: price("11.50"),
			Customization: map[string][]menu.Option{
				"Toppings": {
					{Name: "Extra Cheese", Price: price("1.50")},
					{Name: "Mushrooms", Price: price("1.00")},
					{Name: "Pepperoni", Price: price("1.75")},
				},
			},
		},
		{
			ID: "2", Name: "Buffalo Chicken Wings", ShortName: "Buffalo Wings", Category: "Wings",
			Sizes: []menu.Size{
				{Name: "10 Count", Price: price("9.99")},
				{Name: "24 Count", Price: price("19.99")},
			},
			Customization: map[string][]menu.Option{
				"Sauce": {
					{Name: "Buffalo", Price: price("0.00")},
					{Name: "BBQ", Price: price("0.00")},
					{Name: "Honey Garlic", Price: price("0.50")},
				},
			},
		},
		{ID: "3", Name: "Garlic Bread", Category: "Sides", BasePrice: price("4.99")},
		{ID: "4", Name: "Cola", Category: "Drinks", BasePrice: price("2.49")},
	}, nil
}

func respond(message string, err error) {
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(message)
}

func doSearch(svc *menu.Service, query string) {
	if query == "" {
		fmt.Println("Search for what?")
		return
	}
	matches, err := svc.Search(query, 5, menu.DefaultMinScore)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(matches) == 0 {
		fmt.Printf("Nothing on the menu matches %q.\n", query)
		return
	}
	for _, match := range matches {
		fmt.Printf("  %s (%s, score %.2f)\n", match.Item.DisplayName(), match.Item.Category, match.Score)
	}
}

func doAdd(svc *menu.Service, sess *session.Session, rest string) {
	if rest == "" {
		fmt.Println("Add what?")
		return
	}
	query, size, _ := strings.Cut(rest, "|")
	query = strings.TrimSpace(query)
	size = strings.TrimSpace(size)

	item, err := svc.ResolveItem(query, 0)
	if err != nil {
		fmt.Println(err)
		return
	}
	if item == nil {
		fmt.Printf("I couldn't find %q on our menu.\n", query)
		if suggestions, err := svc.Suggestions(query, 3, 0); err == nil && len(suggestions) > 0 {
			fmt.Printf("Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
		return
	}

	result, err := sess.AddItem(item, size, 1, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	if result.Merged {
		fmt.Printf("Another %s, quantity is now %d.\n", result.Line.DisplayName, result.Line.Quantity)
	} else {
		fmt.Printf("Added %s ($%s).\n", result.Line.DisplayName, result.Line.UnitPrice.StringFixed(2))
	}
	if result.NeedsCustomization {
		fmt.Printf("What sauce would you like for the %s?\n", result.Line.DisplayName)
	}
}

func doCustomize(sess *session.Session, group, option string) {
	if option == "" {
		fmt.Printf("Which %s?\n", strings.ToLower(group))
		return
	}
	line, state, err := sess.Customize("", group, option, 1)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s it is. %s is now $%s.\n", option, line.DisplayName, line.UnitPrice.StringFixed(2))
	if state == session.StateCustomizing || state == session.StateCollectingItems {
		fmt.Println("There's still an item waiting on a sauce.")
	}
}

func doQuantity(sess *session.Session, rest string) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		fmt.Println("Usage: qty <item> <n>")
		return
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		fmt.Println("Usage: qty <item> <n>")
		return
	}
	matcher := strings.Join(fields[:len(fields)-1], " ")

	found, err := sess.UpdateQuantity(matcher, n)
	if err != nil {
		fmt.Println(err)
		return
	}
	if !found {
		fmt.Printf("I couldn't find %q in your cart.\n", matcher)
		return
	}
	fmt.Println(sess.Summary())
}

func doCheckout(finalizer *orders.Finalizer, sess *session.Session) {
	result, err := finalizer.Finalize(context.Background(), sess)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Order %s placed for %s, total $%s.\n",
		result.Order.OrderID, result.Order.CustomerName, result.Order.Total.StringFixed(2))
	if !result.Submitted {
		fmt.Println("(The order desk couldn't be reached; your order is confirmed locally.)")
	}
}
