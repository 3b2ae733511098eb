package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shepherdcrm/shepherd/apps/api/echo"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/user"
	"github.com/shepherdcrm/shepherd/services/email"
	"github.com/shepherdcrm/shepherd/tests"
)

func Test_userApi_userLogin(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "mdr", user.MinistryRoles, grace.ID, "", true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@grace.cd", "lol", user.LeaderRoles, grace.ID, "", false) // 😂

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"username": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ghost", Password: "mdr"}),
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "martha", Password: "nope"}),
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ndog", Password: "lol"}),
			wantData: marchallObj(t, errDeactivated),
		},
		{
			name: "login with username", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: "martha", Password: "mdr"}),
		},
		{
			name: "login with email", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: "Martha@Grace.cd", Password: "mdr"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	resetDB(t)

	path := func(search, ordering string, createdFrom, createdTo time.Time, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		if !createdFrom.IsZero() {
			v.Add("created_from", createdFrom.Format(time.RFC3339))
		}
		if !createdTo.IsZero() {
			v.Add("created_to", createdTo.Format(time.RFC3339))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	// whole seconds; RFC3339 query params round-trip exactly
	now := time.Now().Truncate(time.Second)
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)
	t3 := now.Add(3 * time.Hour)
	t4 := now.Add(4 * time.Hour)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.AdminRoles, "", "", true, now)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true, t1)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true, t2)
	maHope := testutil.CreateUser(t, usrRepo, "Hanna Admin", "hanna1", "hanna@hope.cd", "", user.MinistryRoles, hope.ID, "", true, t3)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@hope.cd", "", user.LeaderRoles, hope.ID, "", false, t4) // 😂

	adminToken := getToken(t, admin)
	maGraceToken := getToken(t, maGrace)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff admin required", path: "/v1/users", token: getToken(t, leadGrace),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken,
			wantData: marchallList(t, admin, maGrace, leadGrace, maHope, naughty),
		},
		{
			name: "Ministry admin only sees own church", path: "/v1/users", token: maGraceToken,
			wantData: marchallList(t, maGrace, leadGrace),
		},
		// filtering
		{name: "search (unknown)", path: path("lol", "", time.Time{}, time.Time{}, nil), token: adminToken, wantData: empty},
		{
			name: "search=admin", path: path("admin", "", time.Time{}, time.Time{}, nil),
			token: adminToken, wantData: marchallList(t, admin, maGrace, maHope),
		},
		{
			name: "search scoped to own church", path: path("admin", "", time.Time{}, time.Time{}, nil),
			token: maGraceToken, wantData: marchallList(t, maGrace),
		},
		{name: "role (unknown)", path: path("", "", time.Time{}, time.Time{}, nil, "boss:"), token: adminToken, wantData: empty},
		{
			name: "role=ministry:", path: path("", "", time.Time{}, time.Time{}, nil, user.RoleMinistryAdmin),
			token: adminToken, wantData: marchallList(t, maGrace, maHope),
		},
		{
			name: "role=admin:,leader:", path: path("", "", time.Time{}, time.Time{}, nil, user.RoleAdmin, user.RoleLeader),
			token: adminToken, wantData: marchallList(t, admin, leadGrace, naughty),
		},
		{name: "is_active=false", path: path("", "", time.Time{}, time.Time{}, bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "created_from", path: path("", "", t2, time.Time{}, nil),
			token: adminToken, wantData: marchallList(t, leadGrace, maHope, naughty),
		},
		{
			name: "created_to", path: path("", "", time.Time{}, t1, nil),
			token: adminToken, wantData: marchallList(t, admin, maGrace),
		},
		{
			name: "created_from - created_to", path: path("", "", t1, t3, nil),
			token: adminToken, wantData: marchallList(t, maGrace, leadGrace, maHope),
		},
		{name: "all combo (empty)", path: path("admin", "", time.Time{}, time.Time{}, bPtr(true), user.RoleLeader), token: adminToken, wantData: empty},
		{
			name: "all combo (found)", path: path("admin", "", t1, time.Time{}, bPtr(true), user.RoleMinistryAdmin),
			token: adminToken, wantData: marchallList(t, maGrace, maHope),
		},
		// ordering
		{
			name: "order by -created_at", path: path("", "-created_at", time.Time{}, time.Time{}, nil), token: adminToken,
			wantData: marchallList(t, naughty, maHope, leadGrace, maGrace, admin),
		},
		{
			name: "order by name", path: path("", "name", time.Time{}, time.Time{}, nil), token: adminToken,
			wantData: marchallList(t, admin, maHope, leadGrace, maGrace, naughty),
		},
		{
			name: "order by -username", path: path("", "-username", time.Time{}, time.Time{}, nil), token: adminToken,
			wantData: marchallList(t, naughty, maGrace, leadGrace, maHope, admin),
		},
		// filtering & ordering
		{
			name: "filtering & ordering", path: path("", "-name", time.Time{}, time.Time{}, nil, user.RoleLeader), token: adminToken,
			wantData: marchallList(t, naughty, leadGrace),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQueryRoles(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Staff admin required", token: getToken(t, leadGrace), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)},
		{name: "Get roles", token: getToken(t, maGrace), wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/roles"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userCreate(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, "", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)

	adminToken := getToken(t, admin)
	maGraceToken := getToken(t, maGrace)

	newUser := func(name, uname, email string, roles []string, churchID string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Password:        "G00dSh3ph3rd!",
			PasswordConfirm: "G00dSh3ph3rd!",
			Roles:           roles,
			ChurchID:        churchID,
		})
	}

	type createExtra struct {
		churchID string
		roles    []string
	}
	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff admin required", token: getToken(t, leadGrace),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "required fields", token: maGraceToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{
				"name":             reqMsg,
				"username":         "one of username or email is required",
				"email":            "one of username or email is required",
				"password":         "password must contain at least 8 characters",
				"password_confirm": reqMsg,
			}),
		},
		{
			name: "username too short", token: maGraceToken, wantCode: http.StatusBadRequest,
			body:     newUser("Paul Lead", "paul", "", user.LeaderRoles, ""),
			wantData: marchallObj(t, echo.Map{"username": "username must be at least 6 characters in length"}),
		},
		{
			name: "invalid roles", token: maGraceToken, wantCode: http.StatusBadRequest,
			body:     newUser("Paul Lead", "paul01", "", []string{"boss:"}, ""),
			wantData: marchallObj(t, echo.Map{"roles": "invalid roles"}),
		},
		{
			name: "ministry admin cannot mint platform admins", token: maGraceToken, wantCode: http.StatusBadRequest,
			body:     newUser("Paul Lead", "paul01", "", []string{user.RoleAdmin}, ""),
			wantData: marchallObj(t, echo.Map{"roles": "platform admins cannot belong to a church"}),
		},
		{
			name: "staff roles require a church", token: adminToken, wantCode: http.StatusBadRequest,
			body:     newUser("Paul Lead", "paul01", "", user.LeaderRoles, ""),
			wantData: marchallObj(t, echo.Map{"roles": "staff roles require a church"}),
		},
		{
			name: "no role escalation", token: adminToken, wantCode: http.StatusBadRequest,
			body:     newUser("Big Boss", "bigboss", "", user.AdminRoles, ""),
			wantData: marchallObj(t, echo.Map{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "duplicate username", token: maGraceToken, wantCode: http.StatusBadRequest,
			body: newUser("Levi Again", "levi01", "", user.LeaderRoles, ""),
			wantData: marchallObj(t, echo.Map{
				"username": user.ErrUserExists.Error(),
				"email":    user.ErrUserExists.Error(),
			}),
		},
		{
			name: "ministry admin is locked to own church", token: maGraceToken, wantCode: http.StatusCreated,
			body:  newUser("Paul Lead", "paul01", "paul@grace.cd", user.LeaderRoles, hope.ID),
			extra: createExtra{churchID: grace.ID, roles: user.LeaderRoles},
		},
		{
			name: "platform admin creates for any church", token: adminToken, wantCode: http.StatusCreated,
			body:  newUser("Hanna Admin", "hanna1", "hanna@hope.cd", user.MinistryRoles, hope.ID),
			extra: createExtra{churchID: hope.ID, roles: user.MinistryRoles},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respUsr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respUsr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				extra := tt.extra.(createExtra)
				if respUsr.ID == "" {
					t.Error("failed! empty ID")
				}
				if respUsr.ChurchID != extra.churchID {
					t.Errorf("failed! ChurchID = %v; want %v", respUsr.ChurchID, extra.churchID)
				}
				if strings.Join(respUsr.Roles, ",") != strings.Join(extra.roles, ",") {
					t.Errorf("failed! Roles = %v; want %v", respUsr.Roles, extra.roles)
				}
				if !respUsr.Active() {
					t.Error("failed! new user not active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userRetrieve(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.AdminRoles, "", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	leadHope := testutil.CreateUser(t, usrRepo, "Noa Shepherd", "noa001", "noa@hope.cd", "", user.LeaderRoles, hope.ID, "", true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + leadGrace.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "own account", path: "/v1/users/" + leadGrace.ID, token: getToken(t, leadGrace),
			wantCode: http.StatusOK, wantData: marchallObj(t, leadGrace),
		},
		{
			name: "leader cannot reach other accounts", path: "/v1/users/" + maGrace.ID, token: getToken(t, leadGrace),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "ministry admin reaches own church", path: "/v1/users/" + leadGrace.ID, token: getToken(t, maGrace),
			wantCode: http.StatusOK, wantData: marchallObj(t, leadGrace),
		},
		{
			name: "ministry admin cannot reach other churches", path: "/v1/users/" + leadHope.ID, token: getToken(t, maGrace),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "platform admin reaches anyone", path: "/v1/users/" + leadHope.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, leadHope),
		},
		{
			name: "unknown user", path: "/v1/users/404e4171-b29e-4db8-a3c4-5411e11f1140", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userUpdate(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)

	naomi := testutil.CreatePerson(t, prsnRepo, grace.ID, person.KindMember, "Naomi", "Adler", person.StatusCompleted, "")
	member := testutil.CreateUser(t, usrRepo, "Naomi Adler", "naomi1", "naomi@grace.cd", "", user.MemberRoles, grace.ID, naomi.ID, true)

	maGraceToken := getToken(t, maGrace)
	memberToken := getToken(t, member)
	bPtr := func(b bool) *bool { return &b }

	type updateExtra struct {
		name  string
		roles []string
	}
	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + leadGrace.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "no one edits their own privileges", path: "/v1/users/" + maGrace.ID, token: maGraceToken,
			body:     marchallObj(t, user.UpdateUser{IsActive: bPtr(false)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "members cannot change username", path: "/v1/users/" + member.ID, token: memberToken,
			body:     marchallObj(t, user.UpdateUser{Username: "naomi22"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "members cannot change roles", path: "/v1/users/" + member.ID, token: memberToken,
			body:     marchallObj(t, user.UpdateUser{Roles: user.MinistryRoles}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "invalid password", path: "/v1/users/" + maGrace.ID, token: maGraceToken,
			body:     marchallObj(t, user.UpdateUser{Password: "short", PasswordConfirm: "short"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "no role escalation", path: "/v1/users/" + leadGrace.ID, token: maGraceToken,
			body:     marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdmin}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"roles": "platform admins cannot belong to a church"}),
		},
		{
			name: "member renames self", path: "/v1/users/" + member.ID, token: memberToken,
			body:     marchallObj(t, user.UpdateUser{Name: "Naomi A."}),
			wantCode: http.StatusOK, extra: updateExtra{name: "Naomi A.", roles: user.MemberRoles},
		},
		{
			name: "ministry admin promotes a leader", path: "/v1/users/" + leadGrace.ID, token: maGraceToken,
			body:     marchallObj(t, user.UpdateUser{Roles: user.MinistryRoles}),
			wantCode: http.StatusOK, extra: updateExtra{name: leadGrace.Name, roles: user.MinistryRoles},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respUsr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respUsr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				extra := tt.extra.(updateExtra)
				if respUsr.Name != extra.name {
					t.Errorf("failed! Name = %v; want %v", respUsr.Name, extra.name)
				}
				if strings.Join(respUsr.Roles, ",") != strings.Join(extra.roles, ",") {
					t.Errorf("failed! Roles = %v; want %v", respUsr.Roles, extra.roles)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userDestroy(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.AdminRoles, "", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	leadGrace2 := testutil.CreateUser(t, usrRepo, "Paul Shepherd", "paul01", "paul@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	leadHope := testutil.CreateUser(t, usrRepo, "Noa Shepherd", "noa001", "noa@hope.cd", "", user.LeaderRoles, hope.ID, "", true)

	maGraceToken := getToken(t, maGrace)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + leadGrace.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff admin required", path: "/v1/users/" + leadGrace.ID, token: getToken(t, leadGrace),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "Say No to Suicide", path: "/v1/users/" + maGrace.ID, token: maGraceToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "Say No to Suicide (bulk)", path: "/v1/users?id=" + leadGrace.ID + "&id=" + maGrace.ID, token: maGraceToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "ministry admin cannot bulk delete other churches", path: "/v1/users?id=" + leadHope.ID, token: maGraceToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{name: "delete one", path: "/v1/users/" + leadGrace.ID, token: maGraceToken, wantCode: http.StatusNoContent, extra: leadGrace.ID},
		{name: "bulk delete own church", path: "/v1/users?id=" + leadGrace2.ID, token: maGraceToken, wantCode: http.StatusNoContent, extra: leadGrace2.ID},
		{name: "platform admin deletes anyone", path: "/v1/users/" + leadHope.ID, token: getToken(t, admin), wantCode: http.StatusNoContent, extra: leadHope.ID},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				id := tt.extra.(string)
				if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: id}); err != user.ErrNotFound {
					t.Errorf("failed! user %v still exists; err %v", id, err)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userRefreshToken(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@grace.cd", "", user.LeaderRoles, grace.ID, "", false) // 😂
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)

	// original issuance older than the refresh threshold
	staleIat := time.Now().Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix()
	unrefreshableToken, err := echoapi.GenerateToken(echoapi.GetUserClaims(leadGrace, staleIat))
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, errDeactivated)},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, leadGrace), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userResetPassword(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in its inbox shortly with instructions to reset the password."})

	pathRegex, err := regexp.Compile("/password-reset/.+/.+")
	if err != nil {
		t.Fatalf("regexp.Compile(): %v", err)
	}

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest, wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"})},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: leadGrace.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: leadGrace.Name, Address: leadGrace.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.TextContent, extra.to.Name) {
						t.Errorf("failed! text content does not contain recipient's name \"%s\"", extra.to.Name)
					}
					if !strings.Contains(msg.HTMLContent, extra.to.Name) {
						t.Errorf("failed! HTML content does not contain recipient's name \"%s\"", extra.to.Name)
					}
					if !pathRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
					}
					if !pathRegex.MatchString(msg.HTMLContent) {
						t.Errorf("failed! HTML content does not match pathRegex %v", pathRegex)
					}
				} else {
					if len(emailsvc.SentMessages) > 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
				}
			}
		})
	}
}

func Test_userApi_userConfirmPasswordReset(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "lol", user.LeaderRoles, grace.ID, "", true)
	validUID := user.EncodeUID(leadGrace)
	validToken := user.MakeToken(leadGrace)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	user.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := user.MakeToken(leadGrace)
	user.NowFunc = time.Now // reset

	invalidTokenData := marchallObj(t, httpErr{Error: "invalid token"})
	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.ResetUserPassword{Token: reqMsg, UID: reqMsg, Password: "password must contain at least 8 characters", PasswordConfirm: reqMsg}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 8 characters"}),
		},
		{
			name: "invalid pwd: no whitespace", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "l o loll", PasswordConfirm: "l o loll"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must not contain whitespace"}),
		},
		{
			name: "invalid pwd: not all numeric", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "12345678", PasswordConfirm: "12345678"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password cannot be entirely numeric"}),
		},
		{
			name: "invalid pwd: complexity", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol12345", PasswordConfirm: "lol12345"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"}),
		},
		{
			name: "invalid pwd: too common", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password is too common"}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "@@@@", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: invalidTokenData,
		},
		{
			name: "user not found", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "bm8tc3VjaC1pZA", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: invalidTokenData,
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsig-sig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: invalidTokenData,
		},
		{
			name: "expired token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: expiredToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "token expired"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: leadGrace.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, leadGrace.PasswordHash) {
					t.Fatalf("failed to update new password")
				}
			}
		})
	}
}
