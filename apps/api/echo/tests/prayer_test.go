package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/core/user"
	"github.com/shepherdcrm/shepherd/tests"
)

func Test_prayerApi_prayerQuery(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", user.AdminRoles, "", "", true)
	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	member := testutil.CreateUser(t, usrRepo, "Naomi Ames", "", "naomi@grace.cd", "", user.MemberRoles, grace.ID, "", true)

	naomiPrsn := testutil.CreatePerson(t, prsnRepo, grace.ID, person.KindMember, "Naomi", "Ames", person.StatusCompleted, "")
	ruthPrsn := testutil.CreatePerson(t, prsnRepo, grace.ID, person.KindMember, "Ruth", "Moab", person.StatusCompleted, "")
	lydiaPrsn := testutil.CreatePerson(t, prsnRepo, hope.ID, person.KindMember, "Lydia", "Seller", person.StatusCompleted, "")

	now := time.Now()
	p1 := testutil.CreatePrayer(t, prayerRepo, grace.ID, naomiPrsn.ID, "Work", "Looking for a new job.", false, now.Add(-2*time.Hour))
	p2 := testutil.CreatePrayer(t, prayerRepo, grace.ID, ruthPrsn.ID, "Family", "For my brother.", true, now.Add(-1*time.Hour))
	p3 := testutil.CreatePrayer(t, prayerRepo, hope.ID, lydiaPrsn.ID, "Harvest", "A fruitful season.", false, now)
	p4 := testutil.CreatePrayer(t, prayerRepo, grace.ID, naomiPrsn.ID, "Health", "Recovering from surgery.", false, now.Add(-30*time.Minute))

	ansT := time.Now().UTC()
	var err error
	if p4, err = prayerRepo.UpdateRequest(context.Background(), prayer.Request{ID: p4.ID, AnsweredAt: ansT, UpdatedAt: ansT}); err != nil {
		t.Fatalf("UpdateRequest() failed: %v", err)
	}

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/prayers", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff only", path: "/v1/prayers", token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "ministry admins see everything", path: "/v1/prayers", token: getToken(t, maGrace),
			wantData: marchallList(t, p1, p2, p4),
		},
		{
			name: "private requests stay hidden from leaders", path: "/v1/prayers", token: getToken(t, leadGrace),
			wantData: marchallList(t, p1, p4),
		},
		{
			name: "platform admin browses all churches", path: "/v1/prayers", token: adminToken,
			wantData: marchallList(t, p1, p2, p4, p3),
		},
		{
			name: "platform admin scoped to one church", path: "/v1/prayers?church=" + hope.ID, token: adminToken,
			wantData: marchallList(t, p3),
		},
		{
			name: "still waiting", path: "/v1/prayers?answered=false", token: getToken(t, maGrace),
			wantData: marchallList(t, p1, p2),
		},
		{
			name: "answered", path: "/v1/prayers?answered=true", token: getToken(t, maGrace),
			wantData: marchallList(t, p4),
		},
		{
			name: "latest first", path: "/v1/prayers?ordering=-created_at", token: getToken(t, maGrace),
			wantData: marchallList(t, p4, p2, p1),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_prayerApi_markAnswered(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	hope := testutil.CreateChurch(t, churchRepo, "Hope City", "", true)

	maGrace := testutil.CreateUser(t, usrRepo, "Martha Admin", "martha", "martha@grace.cd", "", user.MinistryRoles, grace.ID, "", true)
	leadGrace := testutil.CreateUser(t, usrRepo, "Levi Shepherd", "levi01", "levi@grace.cd", "", user.LeaderRoles, grace.ID, "", true)
	maHope := testutil.CreateUser(t, usrRepo, "Hector Admin", "hector", "hector@hope.cd", "", user.MinistryRoles, hope.ID, "", true)
	member := testutil.CreateUser(t, usrRepo, "Naomi Ames", "", "naomi@grace.cd", "", user.MemberRoles, grace.ID, "", true)

	naomiPrsn := testutil.CreatePerson(t, prsnRepo, grace.ID, person.KindMember, "Naomi", "Ames", person.StatusCompleted, "")
	ruthPrsn := testutil.CreatePerson(t, prsnRepo, grace.ID, person.KindMember, "Ruth", "Moab", person.StatusCompleted, "")

	p1 := testutil.CreatePrayer(t, prayerRepo, grace.ID, naomiPrsn.ID, "Work", "Looking for a new job.", false)
	p2 := testutil.CreatePrayer(t, prayerRepo, grace.ID, ruthPrsn.ID, "Family", "For my brother.", true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/prayers/" + p1.ID + "/answered", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff only", path: "/v1/prayers/" + p1.ID + "/answered", token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "private requests stay hidden from leaders", path: "/v1/prayers/" + p2.ID + "/answered", token: getToken(t, leadGrace),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Scoped to own church", path: "/v1/prayers/" + p1.ID + "/answered", token: getToken(t, maHope),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "record the answer", path: "/v1/prayers/" + p2.ID + "/answered", token: getToken(t, maGrace),
			wantCode: http.StatusOK,
		},
		{
			name: "leaders record answers on shared requests", path: "/v1/prayers/" + p1.ID + "/answered", token: getToken(t, leadGrace),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respReq prayer.Request
				if err := json.Unmarshal(rec.Body.Bytes(), &respReq); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if !respReq.Answered() {
					t.Error("failed! request not marked answered")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
