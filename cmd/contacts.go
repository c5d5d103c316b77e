package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rolodex/internal/app"
	"github.com/desertthunder/rolodex/internal/formatter"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/urfave/cli/v3"
)

// ContactsList prints the signed-in user's contacts, optionally filtered with the same rule as the search box.
func (r *Runner) ContactsList(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	contacts, err := r.client.List(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if q := cmd.String("query"); q != "" {
		contacts = app.Filter(contacts, q)
	}

	return formatter.WriteContacts(r.output, contacts, cmd.Bool("json"))
}

// ContactsAdd creates a contact from the field flags.
func (r *Runner) ContactsAdd(ctx context.Context, cmd *cli.Command) error {
	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	rec := applyContactFlags(cmd, models.ContactRecord{})
	if err := rec.Validate(); err != nil {
		return err
	}

	created, err := r.client.Create(ctx, session.UserID, rec)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	r.writePlain("✓ Contact created\n")
	return r.writePlain("%s", formatter.ContactCard(*created))
}

// ContactsEdit changes only the fields whose flags were given.
func (r *Runner) ContactsEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: contact id", shared.ErrMissingArgument)
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	current, err := r.findContact(ctx, session.UserID, id)
	if err != nil {
		return err
	}

	rec := applyContactFlags(cmd, current.Record())
	if err := rec.Validate(); err != nil {
		return err
	}

	updated, err := r.client.Update(ctx, session.UserID, rec)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	r.writePlain("✓ Contact updated\n")
	return r.writePlain("%s", formatter.ContactCard(*updated))
}

// ContactsRemove deletes a contact by id.
func (r *Runner) ContactsRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: contact id", shared.ErrMissingArgument)
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	if err := r.client.Delete(ctx, session.UserID, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	r.logger.Info("contact deleted", "id", id)
	return r.writePlain("✓ Contact deleted\n")
}

func (r *Runner) findContact(ctx context.Context, userID, id string) (*models.Contact, error) {
	contacts, err := r.client.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	for _, c := range contacts {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrContactNotFound, id)
}

// applyContactFlags copies every field flag that was set onto rec. An empty optional value clears the field.
func applyContactFlags(cmd *cli.Command, rec models.ContactRecord) models.ContactRecord {
	if cmd.IsSet("name") {
		rec.Name = cmd.String("name")
	}
	for _, f := range []struct {
		flag  string
		field **string
	}{
		{"email", &rec.Email},
		{"phone", &rec.Phone},
		{"address", &rec.Address},
		{"notes", &rec.Notes},
	} {
		if cmd.IsSet(f.flag) {
			*f.field = models.Optional(cmd.String(f.flag))
		}
	}
	return rec
}
