package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hongminglow/storefront/internal/app"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
	"github.com/hongminglow/storefront/internal/session"
)

const helpText = `Commands:
  signup <name>|<email>|<password>|<phone>|<address>
  login <email> <password>
  me                      refresh the signed-in profile
  logout
  menu [category]         list items, optionally switching category
  add <id>                add a menu item to the cart
  remove <id>
  qty <id> <n>            set a quantity (0 removes)
  cart                    toggle the cart panel
  checkout [type] [payment]
  orders                  show order history
  quit`

type shell struct {
	app *app.App
	in  *bufio.Reader
	out io.Writer
}

func newShell(a *app.App, in io.Reader, out io.Writer) *shell {
	return &shell{app: a, in: bufio.NewReader(in), out: out}
}

func (s *shell) run(ctx context.Context) {
	fmt.Fprintln(s.out, "=== Storefront ===")
	fmt.Fprintln(s.out, "Type 'help' for commands.")

	wasAuthed := s.app.Session.State().IsAuthenticated
	stop := s.app.Session.Subscribe(func(st session.State) {
		if st.IsAuthenticated == wasAuthed || st.Loading {
			return
		}
		wasAuthed = st.IsAuthenticated
		if st.IsAuthenticated {
			fmt.Fprintf(s.out, "Signed in as %s\n", displayName(st.User))
		} else {
			fmt.Fprintln(s.out, "Signed out")
		}
	})
	defer stop()

	if wasAuthed {
		fmt.Fprintf(s.out, "Welcome back, %s\n", displayName(s.app.Session.State().User))
	}

	for {
		fmt.Fprint(s.out, "\n> ")
		line, err := s.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" && !s.dispatch(ctx, line) {
			return
		}
		if err != nil {
			return
		}
	}
}

// dispatch runs one command and reports whether the shell should continue.
func (s *shell) dispatch(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "signup":
		s.signup(ctx, rest)
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: login <email> <password>")
			return true
		}
		s.report(s.app.Session.Login(ctx, dto.LoginRequest{Email: args[0], Password: args[1]}), s.app.Session.State().Err)
	case "me":
		if s.report(s.app.Session.FetchCurrentUser(ctx), s.app.Session.State().Err) {
			u := s.app.Session.State().User
			fmt.Fprintf(s.out, "%s <%s> %s\n", displayName(u), u.Email, u.Address)
		}
	case "logout":
		if err := s.app.Session.Logout(ctx); err != nil {
			fmt.Fprintf(s.out, "Signed out, but stored credentials could not be removed: %v\n", err)
		}
	case "menu":
		s.menu(ctx, strings.TrimSpace(rest))
	case "add":
		s.withID(args, func(id int64) {
			item, ok := s.app.Menu.Find(id)
			if !ok {
				fmt.Fprintf(s.out, "No menu item %d; run 'menu' first\n", id)
				return
			}
			s.app.Cart.AddItem(item)
			fmt.Fprintf(s.out, "Added %s (%d items in cart)\n", item.Name, s.app.Cart.TotalItems())
		})
	case "remove":
		s.withID(args, func(id int64) {
			s.app.Cart.RemoveItem(id)
			s.printCart()
		})
	case "qty":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: qty <id> <n>")
			return true
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(s.out, "quantity must be a number")
			return true
		}
		s.withID(args[:1], func(id int64) {
			s.app.Cart.UpdateQuantity(id, qty)
			s.printCart()
		})
	case "cart":
		s.app.UI.ToggleCart()
		if s.app.UI.IsCartOpen() {
			s.printCart()
		} else {
			fmt.Fprintln(s.out, "Cart closed")
		}
	case "checkout":
		req := app.CheckoutRequest{}
		if len(args) > 0 {
			req.OrderType = args[0]
		}
		if len(args) > 1 {
			req.PaymentMethod = args[1]
		}
		id, err := s.app.Checkout(ctx, req)
		message := s.app.Orders.State().Err
		if errors.Is(err, app.ErrEmptyCart) {
			message = "Cart is empty"
		}
		if s.report(err, message) {
			fmt.Fprintf(s.out, "Order #%d placed\n", id)
		}
	case "orders":
		if s.report(s.app.Orders.FetchOrders(ctx), s.app.Orders.State().Err) {
			s.printOrders()
		}
	case "q", "quit", "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help'.")
	}
	return true
}

func (s *shell) signup(ctx context.Context, rest string) {
	fields := strings.Split(rest, "|")
	if len(fields) != 5 {
		fmt.Fprintln(s.out, "usage: signup <name>|<email>|<password>|<phone>|<address>")
		return
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	err := s.app.Session.Signup(ctx, dto.SignupForm{
		FullName: fields[0],
		Email:    fields[1],
		Password: fields[2],
		Phone:    fields[3],
		Address:  fields[4],
	})
	if s.report(err, s.app.Session.State().Err) && !s.app.Session.State().IsAuthenticated {
		fmt.Fprintln(s.out, "Account created; please log in")
	}
}

func (s *shell) menu(ctx context.Context, category string) {
	if len(s.app.Menu.Items()) == 0 {
		if !s.report(s.app.Menu.FetchMenu(ctx), s.app.Menu.State().Err) {
			return
		}
	}
	if category != "" {
		s.app.Menu.SetCategory(category)
	}
	state := s.app.Menu.State()
	fmt.Fprintf(s.out, "Categories: %s (showing %s)\n", strings.Join(state.Categories, ", "), state.ActiveCategory)
	for _, item := range state.VisibleItems() {
		fmt.Fprintf(s.out, "  %3d  %-24s %-12s %8.2f\n", item.ID, item.Name, item.Category, item.Price)
	}
}

func (s *shell) printCart() {
	lines := s.app.Cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "Cart is empty")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(s.out, "  %3d  %-24s x%-3d %8.2f\n", line.ItemID, line.Name, line.Quantity, line.Subtotal())
	}
	fmt.Fprintf(s.out, "  %d items, total %.2f\n", s.app.Cart.TotalItems(), s.app.Cart.TotalPrice())
}

func (s *shell) printOrders() {
	orders := s.app.Orders.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No orders yet")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(s.out, "#%d  %s %s  %s/%s  %s  %.2f\n", o.ID, o.Date, o.Time, o.OrderType, o.PaymentMethod, o.Status, o.TotalAmount)
		for _, line := range o.Lines {
			fmt.Fprintf(s.out, "      %-24s x%-3d %8.2f\n", line.Name, line.Quantity, line.PriceAtOrderTime)
		}
	}
}

func (s *shell) withID(args []string, fn func(int64)) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "expected one item id")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "invalid item id %q\n", args[0])
		return
	}
	fn(id)
}

// report prints the store's error message and returns true when err is nil.
func (s *shell) report(err error, message string) bool {
	if err == nil {
		return true
	}
	if message == "" {
		message = err.Error()
	}
	fmt.Fprintf(s.out, "Error: %s\n", message)
	return false
}

func displayName(u *models.User) string {
	if u == nil || u.Name == "" {
		return "customer"
	}
	return u.Name
}
