package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/userbook/internal/logging"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	println(args ...any)
	AddUser(ctx context.Context) error
	ListUsers(ctx context.Context) error
	UpdateUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error
}

func printMenu(a execIface) {
	a.println()
	a.println("=== User Management System ===")
	a.println("1. Add new user")
	a.println("2. List users")
	a.println("3. Update user")
	a.println("4. Delete user")
	a.println("5. Exit")
	a.println()
	a.println("Please choose an option (1-5):")
}

// runREPL shows the menu and dispatches the chosen entry to a.
//
// Entries accept the digit or a word alias:
//
//	1 | add      add a new user
//	2 | list     list users
//	3 | update   update one field of a user
//	4 | delete   delete a user
//	5 | exit     leave the program (also: quit)
//
// Handler errors are reported to the operator by the handlers themselves and
// never end the loop. The loop exits on the exit entry or when input ends.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printMenu(a)

		line, readErr := reader.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))
		if readErr != nil && choice == "" {
			return
		}

		var err error
		switch choice {
		case "1", "add":
			err = a.AddUser(ctx)
		case "2", "list":
			err = a.ListUsers(ctx)
		case "3", "update":
			err = a.UpdateUser(ctx)
		case "4", "delete":
			err = a.DeleteUser(ctx)
		case "5", "exit", "quit":
			a.println("Exiting program...")
			return
		default:
			a.println("Invalid option! Please try again.")
		}

		if errors.Is(err, io.EOF) || readErr != nil {
			return
		}
		if err != nil && !isReported(err) {
			logging.L().Error(ctx, "command failed", "choice", choice, "error", err)
		}
	}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
