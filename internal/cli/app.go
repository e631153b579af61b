package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/userbook/internal/models"
)

// userService is the part of *services.UserStore driven by the CLI.
type userService interface {
	AddUser(ctx context.Context, name, number, password string) error
	FindUser(number string) (models.User, bool)
	UpdateUser(ctx context.Context, number string, field models.Field, value string) error
	DeleteUser(ctx context.Context, number string) error
	ListUsers() []models.UserView
}

// App binds a userService to operator input and output.
type App struct {
	users  userService
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewApp returns an App reading from in and writing to out. When in is a
// terminal, passwords are read without echo.
func NewApp(users userService, in io.Reader, out io.Writer) *App {
	return &App{users: users, in: in, reader: bufio.NewReader(in), out: out}
}

// Run shows the menu until the operator exits or input ends.
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.reader)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
