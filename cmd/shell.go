package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"book-manager/catalog"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return string(bytePassword), nil
}

// readLine prompts and reads one trimmed line.
func readLine(sc *bufio.Scanner, prompt string) (string, bool) {
	fmt.Print(prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// runShell wires the components together and drives the interactive
// session until the user exits or stdin closes.
func runShell(cmd *cobra.Command, apiURL, dataFile string) error {
	store, err := catalog.OpenStore(dataFile)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("closing credential store", "err", err)
		}
	}()

	creds := catalog.NewCredentialStore(store)
	vm := catalog.NewViewModel(catalog.NewClient(apiURL))
	defer vm.Close()
	session := catalog.NewSessionController(creds, vm)

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to Book Manager!")

	for {
		var more bool
		if session.Authenticated() {
			more = loggedInLoop(cmd, scanner, session, vm)
		} else {
			more = loggedOutLoop(scanner, session)
		}
		if !more {
			fmt.Println("Goodbye!")
			return nil
		}
	}
}

// loggedOutLoop handles the login and registration forms. It returns
// false when the user exits the program.
func loggedOutLoop(sc *bufio.Scanner, session *catalog.SessionController) bool {
	fmt.Println("\nAvailable commands: login, register, switch, exit")

	for !session.Authenticated() {
		fmt.Printf("\n[%s] > ", session.Mode())
		if !sc.Scan() {
			return false
		}

		switch strings.TrimSpace(sc.Text()) {
		case "login":
			if err := session.SwitchMode(catalog.ModeLogin); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			handleLogin(sc, session)
		case "register":
			if err := session.SwitchMode(catalog.ModeRegister); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			handleRegister(sc, session)
		case "switch":
			target := catalog.ModeRegister
			if session.Mode() == catalog.ModeRegister {
				target = catalog.ModeLogin
			}
			if err := session.SwitchMode(target); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "exit":
			return false
		default:
			fmt.Println("Unknown command. Use: login, register, switch, exit")
		}
	}
	return true
}

func handleLogin(sc *bufio.Scanner, session *catalog.SessionController) {
	username, ok := readLine(sc, "Username: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	if err := session.SubmitLogin(username, password); err != nil {
		fmt.Printf("Error: %v. Please register if you do not have an account.\n", err)
		return
	}
	fmt.Printf("Logged in as %s.\n", username)
}

func handleRegister(sc *bufio.Scanner, session *catalog.SessionController) {
	username, ok := readLine(sc, "Username: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	if err := session.SubmitRegistration(username, password, confirm); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Registration successful! Please login.")
}

// loggedInLoop drives the catalog view. It returns false when the user
// exits the program.
func loggedInLoop(cmd *cobra.Command, sc *bufio.Scanner, session *catalog.SessionController, vm *catalog.ViewModel) bool {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  Catalog: add, edit, delete, view, hide")
	fmt.Println("  Display: search, sort")
	fmt.Println("  Session: logout, exit")

	for session.Authenticated() {
		fmt.Print("\n> ")
		if !sc.Scan() {
			return false
		}

		switch strings.TrimSpace(sc.Text()) {
		case "add":
			handleAddBook(cmd, sc, vm)
		case "edit":
			handleEditBook(cmd, sc, vm)
		case "delete":
			handleDeleteBook(cmd, sc, vm)
		case "view":
			vm.ShowList()
			fmt.Println("Loading...")
			if err := vm.Refresh(cmd.Context()); err != nil {
				fmt.Printf("Error loading books: %v\n", err)
			}
		case "hide":
			vm.HideList()
		case "search":
			if term, ok := readLine(sc, "Search by title or author: "); ok {
				vm.SetSearch(term)
			}
		case "sort":
			handleSort(sc, vm)
		case "logout":
			if err := session.Logout(); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Logged out.")
		case "exit":
			return false
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}

		render(vm)
	}
	return true
}

func handleAddBook(cmd *cobra.Command, sc *bufio.Scanner, vm *catalog.ViewModel) {
	vm.CancelEdit()
	if !promptDraft(sc, vm, catalog.FormDraft{}) {
		return
	}
	submitDraft(cmd, vm)
}

func handleEditBook(cmd *cobra.Command, sc *bufio.Scanner, vm *catalog.ViewModel) {
	idStr, ok := readLine(sc, "Book ID: ")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		fmt.Printf("Invalid book ID: %s\n", idStr)
		return
	}

	var target *catalog.Book
	for _, b := range vm.Books() {
		if b.ID == id {
			target = &b
			break
		}
	}
	if target == nil {
		fmt.Printf("Book %d is not in the current list. Use 'view' to load the catalog.\n", id)
		return
	}

	vm.BeginEdit(*target)
	fmt.Printf("Editing '%s' (press Enter to keep a field).\n", target.Title)
	if !promptDraft(sc, vm, vm.Draft()) {
		vm.CancelEdit()
		return
	}
	submitDraft(cmd, vm)
}

// promptDraft collects the three fields, keeping current values on empty
// input. It reports false if stdin closed.
func promptDraft(sc *bufio.Scanner, vm *catalog.ViewModel, current catalog.FormDraft) bool {
	title, ok := readLine(sc, "Title: ")
	if !ok {
		return false
	}
	author, ok := readLine(sc, "Author: ")
	if !ok {
		return false
	}
	isbn, ok := readLine(sc, "ISBN: ")
	if !ok {
		return false
	}

	if title == "" {
		title = current.Title
	}
	if author == "" {
		author = current.Author
	}
	if isbn == "" {
		isbn = current.ISBN
	}
	vm.SetFields(title, author, isbn)
	return true
}

func submitDraft(cmd *cobra.Command, vm *catalog.ViewModel) {
	if err := vm.Submit(cmd.Context()); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func handleDeleteBook(cmd *cobra.Command, sc *bufio.Scanner, vm *catalog.ViewModel) {
	idStr, ok := readLine(sc, "Book ID: ")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		fmt.Printf("Invalid book ID: %s\n", idStr)
		return
	}

	if err := vm.Delete(cmd.Context(), id); err != nil {
		fmt.Printf("Error deleting book: %v\n", err)
		return
	}
	fmt.Printf("Deleted book %d.\n", id)
}

func handleSort(sc *bufio.Scanner, vm *catalog.ViewModel) {
	order, ok := readLine(sc, "Sort order (asc/desc): ")
	if !ok {
		return
	}
	switch order {
	case "asc":
		vm.SetSort(catalog.Ascending)
	case "desc":
		vm.SetSort(catalog.Descending)
	default:
		fmt.Printf("Invalid sort order: %s\n", order)
	}
}

// render prints the transient notice and, when the list view is open,
// the derived book list.
func render(vm *catalog.ViewModel) {
	if msg := vm.Message(); msg != "" {
		fmt.Printf("\n%s\n", msg)
	}

	if !vm.ListVisible() {
		return
	}

	books := vm.View()
	if len(books) == 0 {
		if vm.Search() != "" {
			fmt.Printf("\nNo books matching '%s'.\n", vm.Search())
		} else {
			fmt.Println("\nNo books in the catalog.")
		}
		return
	}

	fmt.Printf("\n%-5s %-35s %-25s %s\n", "ID", "Title", "Author", "ISBN")
	fmt.Println(strings.Repeat("-", 85))
	for _, b := range books {
		fmt.Printf("%-5d %-35s %-25s %s\n",
			b.ID,
			truncateString(b.Title, 35),
			truncateString(b.Author, 25),
			b.ISBN)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
