package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/logging"
	"github.com/dmitrijs2005/userbook/internal/models"
)

// Operator messages.
const (
	msgSaved            = "User saved successfully"
	msgUpdated          = "User updated successfully"
	msgDeleted          = "User deleted successfully"
	msgNotFound         = "User not found"
	msgInvalidSelection = "Invalid selection!"
	msgNoUsers          = "No registered users yet."
	msgUnexpected       = "An error occurred. Please try again."
)

// reportedError marks an error whose message was already shown to the
// operator.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// report prints the operator message for the outcome of an operation and
// returns err marked as reported.
func (a *App) report(ctx context.Context, err error, success string) error {
	switch {
	case err == nil:
		a.println(success)
		return nil
	case errors.Is(err, common.ErrValidation):
		a.println("Error: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		a.println(msgNotFound)
	case errors.Is(err, common.ErrInvalidSelection):
		a.println(msgInvalidSelection)
	default:
		logging.L().Error(ctx, "unexpected error", "error", err)
		a.println(msgUnexpected)
	}
	return &reportedError{err: err}
}

// AddUser prompts for a name, phone number and password and stores a new user.
func (a *App) AddUser(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Please enter your name", a.out)
	if err != nil {
		return err
	}
	number, err := GetSimpleText(a.reader, "Please enter your phone number (05xxxxxxxxx)", a.out)
	if err != nil {
		return err
	}
	return a.addWithPassword(ctx, name, number)
}

// addWithPassword prompts for the password only; the one-shot add command
// takes name and number from flags.
func (a *App) addWithPassword(ctx context.Context, name, number string) error {
	pw, err := GetPassword(a.reader, a.in, "Please enter your password (at least 8 characters with upper case, lower case and a digit)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	return a.report(ctx, a.users.AddUser(ctx, name, number, string(pw)), msgSaved)
}

// ListUsers prints every user numbered from 1. On a terminal the list is a
// table; otherwise one block per user is printed.
func (a *App) ListUsers(ctx context.Context) error {
	views := a.users.ListUsers()
	if len(views) == 0 {
		a.println(msgNoUsers)
		return nil
	}

	if f, ok := a.out.(*os.File); ok && isTerminal(f) {
		a.println(renderUsersTable(views))
		return nil
	}
	fmt.Fprint(a.out, renderUsersPlain(views))
	return nil
}

// UpdateUser prompts for a phone number, the field to change and its new value.
func (a *App) UpdateUser(ctx context.Context) error {
	number, err := GetSimpleText(a.reader, "Enter the phone number of the user to update", a.out)
	if err != nil {
		return err
	}
	if _, ok := a.users.FindUser(number); !ok {
		return a.report(ctx, fmt.Errorf("%w: %s", common.ErrNotFound, number), "")
	}

	a.println()
	a.println("Select the field to update:")
	a.println("1. Name")
	a.println("2. Phone number")
	a.println("3. Password")
	choice, err := GetSimpleText(a.reader, "Your choice (1-3)", a.out)
	if err != nil {
		return err
	}

	return a.updateField(ctx, number, choice, "")
}

// updateField applies choice to the user matching number. An empty value is
// prompted for.
func (a *App) updateField(ctx context.Context, number, choice, value string) error {
	field, ok := models.ParseField(choice)
	if !ok {
		logging.L().Warn(ctx, "invalid update selection", "field", choice)
		return a.report(ctx, fmt.Errorf("%w: %q", common.ErrInvalidSelection, choice), "")
	}

	if value == "" {
		var err error
		value, err = a.promptFieldValue(field)
		if err != nil {
			return err
		}
	}

	return a.report(ctx, a.users.UpdateUser(ctx, number, field, value), msgUpdated)
}

func (a *App) promptFieldValue(field models.Field) (string, error) {
	switch field {
	case models.FieldName:
		return GetSimpleText(a.reader, "New name", a.out)
	case models.FieldNumber:
		return GetSimpleText(a.reader, "New phone number", a.out)
	default:
		pw, err := GetPassword(a.reader, a.in, "New password", a.out)
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(pw)
		return string(pw), nil
	}
}

// DeleteUser prompts for a phone number and removes the first matching user.
func (a *App) DeleteUser(ctx context.Context) error {
	number, err := GetSimpleText(a.reader, "Enter the phone number of the user to delete", a.out)
	if err != nil {
		return err
	}
	return a.deleteNumber(ctx, number)
}

func (a *App) deleteNumber(ctx context.Context, number string) error {
	return a.report(ctx, a.users.DeleteUser(ctx, number), msgDeleted)
}
