package sessions

import (
	"net/http"

	"github.com/golang/glog"
	"github.com/krancour/taskdash/internal/session"
	"github.com/krancour/taskdash/webui/internal/lib/webmachinery"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// CookieName is the name of the cookie identifying a browser session.
const CookieName = "taskdash_session"

type filter struct {
	storage       session.Storage
	secureCookies bool
}

// NewFilter returns a webmachinery.Filter that identifies the browser session
// a request belongs to, issuing a new one if necessary, and makes that
// session's Store available through StoreFromContext. Each browser session's
// entries are kept in their own scope within the provided storage.
func NewFilter(
	storage session.Storage,
	secureCookies bool,
) webmachinery.Filter {
	return &filter{
		storage:       storage,
		secureCookies: secureCookies,
	}
}

func (f *filter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.FromString(cookie.Value); err == nil {
				sessionID = cookie.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewV4().String()
			// No MaxAge, so the cookie lasts only as long as the browser session
			http.SetCookie(
				w,
				&http.Cookie{
					Name:     CookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   f.secureCookies,
					SameSite: http.SameSiteLaxMode,
				},
			)
		}
		storage := session.Scoped(f.storage, sessionID)
		store, err := session.NewStore(r.Context(), storage, session.DefaultName)
		if err != nil {
			glog.Error(
				errors.Wrapf(err, "error loading browser session %q", sessionID),
			)
			http.Error(
				w,
				http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError,
			)
			return
		}
		ctx := ContextWithStore(r.Context(), store)
		ctx = contextWithStorage(ctx, storage)
		handle(w, r.WithContext(ctx))
	}
}
