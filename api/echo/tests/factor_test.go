package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/core/user"
)

func Test_factorApi_submit(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)

	newRec := factor.NewRecord{
		IconSource: "https://icons.test.cd/weight.png",
		Value:      "80",
		Unit:       "kg",
		StartAt:    time.Now().UTC(),
		EndAt:      time.Now().UTC().Add(24 * time.Hour),
	}

	tests := []httpTest{
		{name: "Auth required", body: marchallObj(t, newRec), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: getToken(t, usr), body: []byte("{}"),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data:    map[string]string{"value": "this field is required"},
			}),
		},
		{
			name: "Unit too long", token: getToken(t, usr),
			body:     marchallObj(t, factor.NewRecord{Value: "80", Unit: strings.Repeat("k", 21)}),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data:    map[string]string{"unit": "unit must be a maximum of 20 characters in length"},
			}),
		},
		{name: "Submitted", token: getToken(t, usr), body: marchallObj(t, newRec), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/factor/record/submit", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData factor.Record
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if respData.ID.IsZero() {
					t.Fatal("failed! zero record id")
				}
				if respData.UserID != usr.ID {
					t.Errorf("record user = %v, want %v", respData.UserID, usr.ID)
				}
				recs, err := fctRepo.QueryUserRecords(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("QueryUserRecords() failed: %v", err)
				}
				if len(recs) != 1 {
					t.Errorf("want 1 record, got %d", len(recs))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_factorApi_query(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	other := createUser(t, "King", "king@test.cd", "", user.RoleStudent)

	now := time.Now().UTC()
	rec1 := createRecord(t, usr, "80", now)
	rec2 := createRecord(t, usr, "81", now.Add(time.Minute))
	createRecord(t, other, "99")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Own records only", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallList(t, rec2, rec1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/factor/record", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_factorApi_update(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	other := createUser(t, "King", "king@test.cd", "", user.RoleStudent)
	rec := createRecord(t, usr, "80")

	updated := rec
	updated.Value = "82"
	updated.Unit = "lb"

	path := func(id string) string { return "/api/factor/record/update/" + id }
	body := marchallObj(t, factor.UpdateRecord{Value: "82", Unit: "lb"})

	tests := []httpTest{
		{name: "Auth required", path: path(rec.ID.Hex()), body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Malformed id", path: path("lol"), token: getToken(t, usr), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Unknown record", path: path(primitive.NewObjectID().Hex()), token: getToken(t, usr), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Someone else's record", path: path(rec.ID.Hex()), token: getToken(t, other), body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Updated", path: path(rec.ID.Hex()), token: getToken(t, usr), body: body,
			wantCode: http.StatusOK, wantData: marchallObj(t, updated),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
