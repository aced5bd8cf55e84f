package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/db"
	"storefront/internal/domain/contacts"
	"storefront/internal/mailer"
	"storefront/internal/params"
	"storefront/internal/validation"
)

type ContactPayload struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,npphone"`
	Message string  `json:"message" validate:"required,max=5000"`
}

// storeContactHandler godoc
//
//	@Summary		Submit the contact form
//	@Description	Stores the message and notifies the site admin by email.
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ContactPayload	true	"Message"
//	@Success		201		{object}	contacts.Contact
//	@Failure		422		{object}	ErrorEnvelope
//	@Failure		429		{object}	ErrorEnvelope
//	@Router			/storecontact [post]
func (app *application) storeContactHandler(w http.ResponseWriter, r *http.Request) {
	var payload ContactPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Phone = trimmedOrNil(payload.Phone)
	payload.Message = strings.TrimSpace(payload.Message)

	if errs := validation.Struct(payload); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	c := &contacts.Contact{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Message: payload.Message,
	}
	if err := app.store.Contacts.Create(ctx, c); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.notifyAdmin(c)

	if err := app.messageResponse(w, http.StatusCreated, "Your message has been received successfully!", c); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyAdmin mails a contact submission to the configured admin address.
// Delivery failures are logged only.
func (app *application) notifyAdmin(c *contacts.Contact) {
	to := app.config.mail.adminTo
	if to == "" {
		app.logger.Warnw("contact notification skipped, no admin address", "contact_id", c.ID)
		return
	}

	data := mailer.ContactSubmission{Name: c.Name, Email: c.Email, Message: c.Message}
	if c.Phone != nil {
		data.Phone = *c.Phone
	}

	attempts, err := app.mailer.Send(mailer.ContactSubmissionTemplate, "Admin", to, data)
	if err != nil {
		app.logger.Errorw("contact notification failed", "contact_id", c.ID, "attempts", attempts, "error", err)
		return
	}
	app.logger.Infow("contact notification sent", "contact_id", c.ID, "attempts", attempts)
}

// viewContactsHandler godoc
//
//	@Summary	List contact submissions
//	@Tags		contacts
//	@Produce	json
//	@Success	200	{array}	contacts.Contact
//	@Security	ApiKeyAuth
//	@Router		/viewcontact [get]
func (app *application) viewContactsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	list, err := app.store.Contacts.List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []*contacts.Contact{}
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteContactHandler godoc
//
//	@Summary	Delete a contact submission
//	@Tags		contacts
//	@Produce	json
//	@Param		id	path		int	true	"Contact ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/contacts/{id} [delete]
func (app *application) deleteContactHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Contacts.Delete(ctx, id); err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.messageResponse(w, http.StatusOK, "Contact deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}
