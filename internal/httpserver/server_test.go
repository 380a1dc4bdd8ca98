package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/questlog/tablehall/internal/hash"
	"github.com/questlog/tablehall/internal/middleware"
	"github.com/questlog/tablehall/internal/repo"
	"github.com/questlog/tablehall/internal/service"
	"github.com/questlog/tablehall/internal/tokens"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	r := repo.New(db)
	hasher := hash.New(&hash.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	tokenSvc := tokens.NewService([]byte("test-jwt-secret"), 15*time.Minute)

	authSvc := &service.Auth{
		Repo:       r,
		Hasher:     hasher,
		Tokens:     tokenSvc,
		RefreshTTL: 24 * time.Hour,
	}
	tablesSvc := &service.Tables{Repo: r}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:   &AuthHTTP{Svc: authSvc},
		TablesHandler: &TablesHTTP{Svc: tablesSvc},
		AuthMW:        middleware.NewAuth(tokenSvc),
	})
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

type authBody struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func registerHTTP(t *testing.T, e *echo.Echo, username string) authBody {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":"Secret123!"}`,
		username, username+"@test.com")
	rec := doJSON(t, e, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res authBody
	decodeBody(t, rec, &res)
	return res
}

func TestHTTP_AuthFlow(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	reg := registerHTTP(t, e, "alice")
	require.NotEmpty(t, reg.Token)
	require.NotEmpty(t, reg.RefreshToken)
	require.Equal(t, "alice", reg.User.Username)

	rec := doJSON(t, e, http.MethodPost, "/auth/login", "",
		`{"email":"alice@test.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login authBody
	decodeBody(t, rec, &login)

	rec = doJSON(t, e, http.MethodGet, "/auth/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decodeBody(t, rec, &me)
	require.Equal(t, reg.User.ID, me.ID)

	rec = doJSON(t, e, http.MethodPost, "/auth/refresh", "",
		fmt.Sprintf(`{"refresh_token":%q}`, login.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated authBody
	decodeBody(t, rec, &rotated)
	require.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token is rejected.
	rec = doJSON(t, e, http.MethodPost, "/auth/refresh", "",
		fmt.Sprintf(`{"refresh_token":%q}`, login.RefreshToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
}

func TestHTTP_Register_Validation(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/auth/register", "",
		`{"username":"bob","email":"not-an-email","password":"Secret123!"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestHTTP_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	registerHTTP(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/auth/register", "",
		`{"username":"alice2","email":"alice@test.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestHTTP_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	registerHTTP(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/auth/login", "",
		`{"email":"alice@test.com","password":"WrongPassword1"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
}

func TestHTTP_ProtectedRoutesRejectAnonymous(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/tables", "", `{"name":"Nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTP_TableJoinFlow(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	gm := registerHTTP(t, e, "gm")
	player := registerHTTP(t, e, "player")

	rec := doJSON(t, e, http.MethodPost, "/tables", gm.Token,
		`{"name":"Friday Night Heroes","description":"Weekly D&D","max_players":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var table struct {
		ID   string `json:"id"`
		GMID string `json:"gm_id"`
	}
	decodeBody(t, rec, &table)
	require.Equal(t, gm.User.ID, table.GMID)

	// Anyone can read the table.
	rec = doJSON(t, e, http.MethodGet, "/tables/"+table.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/tables/"+table.ID+"/requests", player.Token,
		`{"message":"newbie here"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var joinReq struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &joinReq)

	// A second pending request hits the one-pending-per-table rule.
	rec = doJSON(t, e, http.MethodPost, "/tables/"+table.ID+"/requests", player.Token, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	// Only the GM may accept.
	rec = doJSON(t, e, http.MethodPost, "/requests/"+joinReq.ID+"/accept", player.Token, "")
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/requests/"+joinReq.ID+"/accept", gm.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, "/tables/"+table.ID+"/members", player.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var members []struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &members)
	require.Len(t, members, 1)
	require.Equal(t, player.User.ID, members[0].ID)

	// Accepting twice hits the terminal-status rule.
	rec = doJSON(t, e, http.MethodPost, "/requests/"+joinReq.ID+"/accept", gm.Token, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestHTTP_SessionFlow(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	gm := registerHTTP(t, e, "gm")
	player := registerHTTP(t, e, "player")

	rec := doJSON(t, e, http.MethodPost, "/tables", gm.Token, `{"name":"Heroes","max_players":4}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var table struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &table)

	rec = doJSON(t, e, http.MethodPost, "/tables/"+table.ID+"/requests", player.Token, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var joinReq struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &joinReq)
	rec = doJSON(t, e, http.MethodPost, "/requests/"+joinReq.ID+"/accept", gm.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	scheduledAt := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	rec = doJSON(t, e, http.MethodPost, "/tables/"+table.ID+"/sessions", gm.Token,
		fmt.Sprintf(`{"title":"Session One","scheduled_at":%q,"duration_min":180}`, scheduledAt))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &session)

	// Sessions are publicly listable.
	rec = doJSON(t, e, http.MethodGet, "/tables/"+table.ID+"/sessions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPut, "/sessions/"+session.ID+"/intent", player.Token,
		`{"status":"attending"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/sessions/"+session.ID+"/checkin", player.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var intent struct {
		CheckedInAt *time.Time `json:"checked_in_at"`
	}
	decodeBody(t, rec, &intent)
	require.NotNil(t, intent.CheckedInAt)

	rec = doJSON(t, e, http.MethodPost, "/sessions/"+session.ID+"/cancel", gm.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Intent changes are frozen once the session is cancelled.
	rec = doJSON(t, e, http.MethodPut, "/sessions/"+session.ID+"/intent", player.Token,
		`{"status":"declined"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestHTTP_Health(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
