package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/jobs"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/utils"
)

const SessionCookieName = "NurpathSession"
const CSRFFieldName = "csrf_token"

const sessionDuration = time.Hour * 24 * 14

func makeSessionId() string {
	return randomToken(40)
}

func makeCSRFToken() string {
	return randomToken(30)
}

func randomToken(length int) string {
	idBytes := make([]byte, length)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(idBytes)[:length]
}

var ErrNoSession = errors.New("no session found")

func GetSession(ctx context.Context, conn db.ConnOrTx, id string) (*models.Session, error) {
	sess, err := db.QueryOne[models.Session](ctx, conn,
		`
		---- Fetch session
		SELECT $columns
		FROM session
		WHERE id = $1 AND expires_at > NOW()
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		} else {
			return nil, oops.New(err, "failed to get session")
		}
	}

	return sess, nil
}

func CreateSession(ctx context.Context, conn db.ConnOrTx, username string) (*models.Session, error) {
	session := models.Session{
		ID:        makeSessionId(),
		Username:  username,
		ExpiresAt: time.Now().Add(sessionDuration),
		CSRFToken: makeCSRFToken(),
	}

	_, err := conn.Exec(ctx,
		"INSERT INTO session (id, username, expires_at, csrf_token) VALUES ($1, $2, $3, $4)",
		session.ID, session.Username, session.ExpiresAt, session.CSRFToken,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn db.ConnOrTx, id string) error {
	_, err := conn.Exec(ctx, "DELETE FROM session WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

func DeleteSessionsForUser(ctx context.Context, conn db.ConnOrTx, username string) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM session WHERE LOWER(username) = LOWER($1)", username)
	if err != nil {
		return 0, oops.New(err, "failed to delete sessions for user")
	}
	return tag.RowsAffected(), nil
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,
		Path:  "/",

		Domain:  config.Config.Auth.CookieDomain,
		Expires: session.ExpiresAt,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:   SessionCookieName,
		Path:   "/",
		Domain: config.Config.Auth.CookieDomain,
		MaxAge: -1,
	}
}

func DeleteExpiredSessions(ctx context.Context, conn db.ConnOrTx) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM session WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn db.ConnOrTx) *jobs.Job {
	job := jobs.New("delete expired sessions")
	go func() {
		defer job.Finish()

		sweep := func() {
			err := func() (err error) {
				defer utils.RecoverPanicAsError(&err)

				n, err := DeleteExpiredSessions(job.Ctx, conn)
				if err == nil && n > 0 {
					job.Logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
				}
				return err
			}()
			if err != nil {
				job.Logger.Error().Err(err).Msg("Failed to delete expired sessions")
			}
		}

		sweep()
		t := time.NewTicker(1 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				sweep()
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
