package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/azaliaz/bookly-storefront/internal/catalog"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
)

const helpText = `commands:
  books                      list the catalog
  search <type> <args>       type: title|author|publisher|isbn|price|inventory
  recommended                books picked for you (login required)
  add <id>                   add one unit to the cart
  qty <id> <n>               set cart quantity (0 removes)
  rm <id>                    remove from the cart
  cart                       show the cart
  checkout                   buy everything in the cart
  history                    purchase history
  login <user> <pass>        sign in
  register                   create an account
  profile                    update your profile
  book-add | book-edit <id> | book-rm <id>   admin panel
  logout, help, quit
`

// RunUI reads commands line by line and dispatches to the storefront.
// Every failure is converted to a single printed message; nothing
// propagates out of the loop except context cancellation.
func (s *Storefront) RunUI(ctx context.Context, in io.Reader, out io.Writer) error {
	log := logger.Get()
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "bookly storefront, type 'help' for commands\n")
	for {
		s.prompt(out)
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, scanner, out, cmd, args); err != nil {
			log.Debug().Err(err).Str("cmd", cmd).Msg("command failed")
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func (s *Storefront) prompt(out io.Writer) {
	if sess, ok := s.Session(); ok {
		fmt.Fprintf(out, "[%s/%s cart:%d]> ", sess.Subject, sess.Role, s.cart.TotalItems())
		return
	}
	fmt.Fprintf(out, "[guest cart:%d]> ", s.cart.TotalItems())
}

func (s *Storefront) dispatch(ctx context.Context, scanner *bufio.Scanner, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprint(out, helpText)
	case "books":
		return s.printResult(ctx, out, s.Browse)
	case "search":
		q, err := parseQuery(args)
		if err != nil {
			return err
		}
		listing, err := s.Search(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprint(out, listing)
	case "recommended":
		return s.printResult(ctx, out, s.Recommended)
	case "add":
		if len(args) != 1 {
			return fmt.Errorf("usage: add <id>")
		}
		if err := s.AddToCart(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "added, %d items in cart\n", s.cart.TotalItems())
	case "qty":
		if len(args) != 2 {
			return fmt.Errorf("usage: qty <id> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}
		return s.SetQuantity(ctx, args[0], n)
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <id>")
		}
		s.RemoveFromCart(args[0])
	case "cart":
		return s.printResult(ctx, out, s.ViewCart)
	case "checkout":
		return s.printResult(ctx, out, s.Checkout)
	case "history":
		return s.printResult(ctx, out, s.History)
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <user> <pass>")
		}
		if err := s.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprint(out, "logged in\n")
	case "logout":
		if err := s.Logout(); err != nil {
			return err
		}
		fmt.Fprint(out, "logged out\n")
	case "register":
		reg := models.Registration{
			Username:  ask(scanner, out, "username"),
			Password:  ask(scanner, out, "password"),
			Email:     ask(scanner, out, "email"),
			FirstName: ask(scanner, out, "first name"),
			LastName:  ask(scanner, out, "last name"),
		}
		if err := s.Register(ctx, reg); err != nil {
			return err
		}
		fmt.Fprint(out, "registered, you can log in now\n")
	case "profile":
		upd := models.ProfileUpdate{
			Email:     ask(scanner, out, "email (blank keeps)"),
			FirstName: ask(scanner, out, "first name (blank keeps)"),
			LastName:  ask(scanner, out, "last name (blank keeps)"),
		}
		if err := s.UpdateProfile(ctx, upd); err != nil {
			return err
		}
		fmt.Fprint(out, "profile updated\n")
	case "book-add":
		book, err := askBook(scanner, out)
		if err != nil {
			return err
		}
		saved, err := s.CreateBook(ctx, book)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "book %s created\n", saved.ID)
	case "book-edit":
		if len(args) != 1 {
			return fmt.Errorf("usage: book-edit <id>")
		}
		book, err := askBook(scanner, out)
		if err != nil {
			return err
		}
		if _, err := s.UpdateBook(ctx, args[0], book); err != nil {
			return err
		}
		fmt.Fprint(out, "book updated\n")
	case "book-rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: book-rm <id>")
		}
		if err := s.DeleteBook(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprint(out, "book deleted\n")
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (s *Storefront) printResult(ctx context.Context, out io.Writer, op func(context.Context) (string, error)) error {
	text, err := op(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)
	return nil
}

func ask(scanner *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// askBook collects the admin book form; price and inventory are
// coerced to numbers before anything is sent.
func askBook(scanner *bufio.Scanner, out io.Writer) (models.Book, error) {
	book := models.Book{
		ISBN:        ask(scanner, out, "isbn"),
		Title:       ask(scanner, out, "title"),
		Author:      ask(scanner, out, "author"),
		Description: ask(scanner, out, "description"),
		Publisher:   ask(scanner, out, "publisher"),
	}
	price, err := strconv.ParseFloat(ask(scanner, out, "price"), 64)
	if err != nil {
		return models.Book{}, fmt.Errorf("price must be a number: %w", err)
	}
	inventory, err := strconv.Atoi(ask(scanner, out, "inventory"))
	if err != nil {
		return models.Book{}, fmt.Errorf("inventory must be a number: %w", err)
	}
	book.Price = price
	book.Inventory = inventory
	return book, nil
}

func parseQuery(args []string) (catalog.Query, error) {
	if len(args) == 0 {
		return catalog.Query{}, fmt.Errorf("usage: search <type> <args>")
	}
	kind := catalog.Kind(args[0])
	rest := args[1:]
	switch kind {
	case catalog.KindTitle, catalog.KindAuthor, catalog.KindPublisher, catalog.KindISBN:
		if len(rest) == 0 {
			return catalog.Query{}, fmt.Errorf("search %s needs a keyword", kind)
		}
		return catalog.Query{Kind: kind, Keyword: strings.Join(rest, " ")}, nil
	case catalog.KindPrice:
		if len(rest) != 2 {
			return catalog.Query{}, fmt.Errorf("usage: search price <min> <max>")
		}
		minPrice, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return catalog.Query{}, fmt.Errorf("min price must be a number: %w", err)
		}
		maxPrice, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return catalog.Query{}, fmt.Errorf("max price must be a number: %w", err)
		}
		return catalog.Query{Kind: kind, MinPrice: minPrice, MaxPrice: maxPrice}, nil
	case catalog.KindInventory:
		if len(rest) != 1 {
			return catalog.Query{}, fmt.Errorf("usage: search inventory <min>")
		}
		minInv, err := strconv.Atoi(rest[0])
		if err != nil {
			return catalog.Query{}, fmt.Errorf("min inventory must be a number: %w", err)
		}
		return catalog.Query{Kind: kind, MinInventory: minInv}, nil
	default:
		return catalog.Query{}, fmt.Errorf("unknown search type %q", kind)
	}
}
