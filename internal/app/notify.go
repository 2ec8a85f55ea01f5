package app

import (
	"errors"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/session"
	"github.com/sadopc/taskdesk/internal/tasks"
)

// Describe turns the outcome of an operation into the one notification
// shown for it. fallbackKey names the generic message for the operation.
// A nil result means nothing should be shown.
func Describe(err error, l *i18n.Localizer, fallbackKey string) *model.Notification {
	var restricted *api.GuestRestrictedError
	var rejected *api.RejectedError

	switch {
	case err == nil, stale(err):
		return nil
	case errors.As(err, &restricted):
		action := l.T("guestAction." + string(restricted.Action))
		n := model.NewNotification(model.SeverityInfo, l.T("guestActionRestriction.actionNotAllowed", "action", action))
		return &n
	case errors.Is(err, api.ErrGuestSession):
		n := model.NewNotification(model.SeverityInfo, l.T("guestNotification.tasksNotSaved"))
		return &n
	case errors.Is(err, api.ErrValidation):
		n := model.NewNotification(model.SeverityError, l.T("errorRequired"))
		return &n
	case errors.Is(err, api.ErrNetwork):
		n := model.NewNotification(model.SeverityError, l.T("errorNetwork"))
		return &n
	case errors.As(err, &rejected) && rejected.Detail != "":
		n := model.NewNotification(model.SeverityError, rejected.Detail)
		return &n
	}
	n := model.NewNotification(model.SeverityError, l.T(fallbackKey))
	return &n
}

// Fail handles a failed operation: a 401 signs the user out, then exactly one
// notification describes the failure.
func (a *App) Fail(err error, l *i18n.Localizer, fallbackKey string) *model.Notification {
	if IsUnauthorized(err) {
		a.Log.Info().Msg("session rejected by server, signing out")
		if lerr := a.Machine.Logout(); lerr != nil {
			a.Log.Error().Err(lerr).Msg("logout after 401")
		}
	} else if err != nil && !stale(err) {
		a.Log.Debug().Err(err).Str("fallback", fallbackKey).Msg("operation failed")
	}
	return Describe(err, l, fallbackKey)
}

// stale reports a result dropped because the session moved on.
func stale(err error) bool {
	return errors.Is(err, tasks.ErrStale) || errors.Is(err, session.ErrStale)
}
