// Package webhooks receives account events from the identity provider.
//
// Payloads are signed with Svix headers (svix-id, svix-timestamp,
// svix-signature). Supported event types:
//   - user.created: create the local account
//   - user.updated: refresh email, name and image
//   - user.deleted: mark the account deleted and drop its availability
//
// Other types are acknowledged and ignored so the provider does not retry.
package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	"github.com/dalemusser/vetmentor/internal/app/system/auditlog"
	"github.com/dalemusser/vetmentor/internal/app/system/requestid"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/app/system/timeouts"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

// maxPayload caps webhook bodies.
const maxPayload = 256 << 10

// Verifier checks a payload against its signature headers.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// Accounts is the account side of the booking service.
type Accounts interface {
	SyncIdentity(ctx context.Context, id booking.Identity) (models.User, bool, error)
	DeleteIdentity(ctx context.Context, externalID string) (models.User, error)
}

// Handler serves the identity webhook.
type Handler struct {
	Verifier Verifier
	Accounts Accounts
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler builds a Handler that verifies payloads with the given Svix
// signing secret ("whsec_...").
func NewHandler(secret string, accounts Accounts, audit *auditlog.Logger, logger *zap.Logger) (*Handler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &Handler{Verifier: wh, Accounts: accounts, Audit: audit, Log: logger}, nil
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
}

// primaryEmail returns the primary address, or the first one listed.
func (d userData) primaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var errMissingID = errors.New("missing user id")

// ServeIdentity handles POST /webhooks/identity.
func (h *Handler) ServeIdentity(w http.ResponseWriter, r *http.Request) {
	log := requestid.Logger(r.Context(), h.Log)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayload))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Verifier.Verify(payload, r.Header); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		h.Audit.WebhookRejected(r.Context(), r, "bad signature")
		respond.Error(w, http.StatusBadRequest, "invalid signature")
		return
	}

	var ev event
	if err := json.Unmarshal(payload, &ev); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var data userData
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid payload")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch ev.Type {
	case "user.created", "user.updated":
		err = h.sync(ctx, r, ev.Type, data)
	case "user.deleted":
		err = h.delete(ctx, r, data)
	default:
		log.Debug("webhook type ignored", zap.String("type", ev.Type))
		respond.OK(w, map[string]bool{"received": true})
		return
	}

	switch {
	case errors.Is(err, errMissingID):
		respond.Error(w, http.StatusBadRequest, "missing user id")
		return
	case errors.Is(err, booking.ErrUserNotFound):
		// Deleting an account we never saw is not an error.
	case err != nil:
		respond.Fail(w, log, "identity webhook", err)
		return
	}
	respond.OK(w, map[string]bool{"received": true})
}

func (h *Handler) sync(ctx context.Context, r *http.Request, typ string, d userData) error {
	if d.ID == "" {
		return errMissingID
	}
	u, created, err := h.Accounts.SyncIdentity(ctx, booking.Identity{
		ExternalID: d.ID,
		Email:      d.primaryEmail(),
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		ImageURL:   d.ImageURL,
	})
	if err != nil {
		return err
	}
	kind := audit.EventUserUpdated
	if created {
		kind = audit.EventUserCreated
	}
	h.Audit.Identity(ctx, r, kind, d.ID, &u.ID)
	h.Log.Info("identity synced",
		zap.String("type", typ),
		zap.String("external_id", d.ID),
		zap.Bool("created", created))
	return nil
}

func (h *Handler) delete(ctx context.Context, r *http.Request, d userData) error {
	if d.ID == "" {
		return errMissingID
	}
	u, err := h.Accounts.DeleteIdentity(ctx, d.ID)
	if err != nil {
		return err
	}
	h.Audit.Identity(ctx, r, audit.EventUserDeleted, d.ID, &u.ID)
	h.Log.Info("identity deleted", zap.String("external_id", d.ID))
	return nil
}
