package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/arllen133/userforms/users"
	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability; *store.Session satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// maxMemory bounds the multipart body kept in memory; the rest spills to disk.
const maxMemory = 32 << 20

// Handler serves the users page, its JSON twin and the health check.
type Handler struct {
	gateway    users.Gateway
	dispatcher *users.Dispatcher
	db         Pinger
	logger     *slog.Logger
}

// NewHandler builds a Handler. gateway serves the list views; every
// submission goes through dispatcher.
func NewHandler(gateway users.Gateway, dispatcher *users.Dispatcher, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{gateway: gateway, dispatcher: dispatcher, db: db, logger: logger}
}

type page struct {
	Users   []*users.User
	Edit    *users.User
	Success string
	Error   string
}

// Page renders the list. ?edit=<id> switches the form to update mode for
// that user; an unknown id leaves it in create mode.
func (h *Handler) Page(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.gateway.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "users.html", page{Error: users.MsgSomethingWentWrong})
		return
	}

	data := page{Users: list}
	if raw := c.Query("edit"); raw != "" {
		data.Edit = find(list, users.ParseID(raw))
	}
	c.HTML(http.StatusOK, "users.html", data)
}

// Submit dispatches a form post and re-renders the page with the outcome
// and the current list. A failed update keeps the form in edit mode.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	form := h.postForm(c)
	result := h.dispatcher.Handle(ctx, form)

	data := page{}
	if result.OK() {
		data.Success = result.Message
	} else {
		data.Error = result.Message
	}

	list, err := h.gateway.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "users.html", page{Error: users.MsgSomethingWentWrong})
		return
	}
	data.Users = list

	if !result.OK() && users.Intent(form.Get(users.IntentField)) == users.IntentUpdate {
		data.Edit = find(list, users.ParseID(form.Get("id")))
	}
	c.HTML(result.StatusCode, "users.html", data)
}

// List answers with every user as a JSON array, empty rather than null.
func (h *Handler) List(c *gin.Context) {
	list, err := h.gateway.ListAll(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list users", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, users.InternalError().Payload())
		return
	}
	c.JSON(http.StatusOK, list)
}

// SubmitJSON dispatches a form post and answers {"success"} or {"error"}
// with the result's status.
func (h *Handler) SubmitJSON(c *gin.Context) {
	result := h.dispatcher.Handle(c.Request.Context(), h.postForm(c))
	c.JSON(result.StatusCode, result.Payload())
}

// Health pings the database: 200 {"status":"ok"} or 503.
func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "health check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// postForm returns the url-encoded or multipart body fields. A body that
// cannot be parsed is logged and yields whatever fields were read before the
// error, usually none, which dispatches as an invalid intent.
func (h *Handler) postForm(c *gin.Context) url.Values {
	var err error
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		err = c.Request.ParseMultipartForm(maxMemory)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		h.logger.DebugContext(c.Request.Context(), "parse form", slog.Any("error", err))
	}
	return c.Request.PostForm
}

func find(list []*users.User, id int64) *users.User {
	for _, u := range list {
		if u.ID == id {
			return u
		}
	}
	return nil
}
