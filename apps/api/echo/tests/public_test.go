package tests

import (
	"context"
	"net/http"
	"net/mail"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/shepherdcrm/shepherd/apps/api/echo"
	"github.com/shepherdcrm/shepherd/core/person"
	"github.com/shepherdcrm/shepherd/core/prayer"
	"github.com/shepherdcrm/shepherd/services/email"
	"github.com/shepherdcrm/shepherd/tests"
)

func Test_publicApi_churchRetrieve(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	testutil.CreateChurch(t, churchRepo, "Closed Door", "", false)

	tests := []httpTest{
		{
			name: "unknown church", path: "/v1/public/churches/no-such-church",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "deactivated churches stay hidden", path: "/v1/public/churches/closed-door",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "retrieve", path: "/v1/public/churches/" + grace.Slug,
			wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.PublicChurchResponse{Name: grace.Name}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_publicApi_register(t *testing.T) {
	resetDB(t)

	grace := testutil.CreateChurch(t, churchRepo, "Grace Chapel", "", true)
	testutil.CreateChurch(t, churchRepo, "Closed Door", "", false)

	gracePath := "/v1/public/churches/" + grace.Slug + "/registrations"
	reqMsg := "this field is required"
	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "Thanks for registering. Someone from the church will be in touch soon.",
	})

	type registerExtra struct {
		search        string
		kind          person.Kind
		wantConverted bool
		mailTo        *mail.Address
		prayerBody    string
	}
	tests := []httpTest{
		{
			name: "unknown church", path: "/v1/public/churches/nowhere/registrations",
			body:     marchallObj(t, person.Registration{FirstName: "Lois", LastName: "Visitor"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "registrations need an open door", path: "/v1/public/churches/closed-door/registrations",
			body:     marchallObj(t, person.Registration{FirstName: "Lois", LastName: "Visitor"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "required fields", path: gracePath, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"first_name": reqMsg, "last_name": reqMsg}),
		},
		{
			name: "invalid email", path: gracePath, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, person.Registration{FirstName: "Lois", LastName: "Visitor", Email: "not-an-email"}),
			wantData: marchallObj(t, echo.Map{"email": "email must be a valid email address"}),
		},
		{
			name: "a guest registers", path: gracePath, wantCode: http.StatusCreated, wantData: successData,
			body: marchallObj(t, person.Registration{FirstName: "Lois", LastName: "Visitor", Email: "lois@home.cd", City: "Goma"}),
			extra: registerExtra{
				search: "Lois", kind: person.KindGuest,
				mailTo: &mail.Address{Name: "Lois Visitor", Address: "lois@home.cd"},
			},
		},
		{
			name: "a new convert registers", path: gracePath, wantCode: http.StatusCreated, wantData: successData,
			body:  marchallObj(t, person.Registration{FirstName: "Felix", LastName: "Okapi", IsNewConvert: true}),
			extra: registerExtra{search: "Felix", kind: person.KindConvert, wantConverted: true},
		},
		{
			name: "a prayer request rides along", path: gracePath, wantCode: http.StatusCreated, wantData: successData,
			body: marchallObj(t, echoapi.RegistrationRequest{
				Registration:  person.Registration{FirstName: "Hana", LastName: "Kivu"},
				PrayerRequest: "Please pray for my family",
			}),
			extra: registerExtra{search: "Hana", kind: person.KindGuest, prayerBody: "Please pray for my family"},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusCreated {
				return
			}
			extra := tt.extra.(registerExtra)

			persons, err := prsnRepo.QueryPersons(context.Background(), &person.QueryFilter{ChurchID: grace.ID, Search: extra.search}, nil)
			if err != nil {
				t.Fatalf("QueryPersons() failed: %v", err)
			}
			if len(persons) != 1 {
				t.Fatalf("failed! %v persons registered", len(persons))
			}
			prsn := persons[0]
			if prsn.Kind != extra.kind {
				t.Errorf("failed! Kind = %v; want %v", prsn.Kind, extra.kind)
			}
			if prsn.Source != person.SourceRegistration {
				t.Errorf("failed! Source = %v; want %v", prsn.Source, person.SourceRegistration)
			}
			if prsn.Status != person.StatusNew {
				t.Errorf("failed! Status = %v; want %v", prsn.Status, person.StatusNew)
			}
			if extra.wantConverted {
				if prsn.ConvertedAt.IsZero() {
					t.Error("failed! ConvertedAt not set")
				}
				if !prsn.VisitedAt.IsZero() {
					t.Error("failed! VisitedAt set on a convert")
				}
			} else {
				if prsn.VisitedAt.IsZero() {
					t.Error("failed! VisitedAt not set")
				}
				if !prsn.ConvertedAt.IsZero() {
					t.Error("failed! ConvertedAt set on a guest")
				}
			}

			if extra.mailTo != nil {
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("failed! %v registration emails sent", len(emailsvc.SentMessages))
				}
				msg := emailsvc.SentMessages[0]
				if msg.Subject != "Thanks for registering" {
					t.Errorf("failed! Subject = %v", msg.Subject)
				}
				if msg.To[0] != *extra.mailTo {
					t.Errorf("failed! To = %v; want %v", msg.To[0], *extra.mailTo)
				}
			} else if len(emailsvc.SentMessages) != 0 {
				t.Errorf("failed! %v registration emails sent without an email address", len(emailsvc.SentMessages))
			}

			if extra.prayerBody != "" {
				reqs, err := prayerRepo.QueryRequests(context.Background(), &prayer.QueryFilter{ChurchID: grace.ID, PersonID: prsn.ID}, nil)
				if err != nil {
					t.Fatalf("QueryRequests() failed: %v", err)
				}
				if len(reqs) != 1 {
					t.Fatalf("failed! %v prayer requests recorded", len(reqs))
				}
				if reqs[0].Subject != "Prayer request" {
					t.Errorf("failed! Subject = %v", reqs[0].Subject)
				}
				if reqs[0].Body != extra.prayerBody {
					t.Errorf("failed! Body = %v; want %v", reqs[0].Body, extra.prayerBody)
				}
				if reqs[0].IsPrivate {
					t.Error("failed! registration prayer requests are not private")
				}
			}
		})
	}
}
