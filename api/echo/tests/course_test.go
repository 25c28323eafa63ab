package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/user"
	emailsvc "github.com/everly/elearning/services/email"
)

func Test_courseApi_create(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)

	newCourse := course.NewCourse{
		Title:    "Go",
		Desc:     "What Go is all about.",
		Author:   []string{"Jane Doe"},
		Source:   []string{"https://videos.test.cd/go"},
		Image:    "https://images.test.cd/go.png",
		Category: "IT",
	}

	tests := []httpTest{
		{name: "Auth required", body: marchallObj(t, newCourse), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), body: marchallObj(t, newCourse),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: getToken(t, admin), body: []byte("{}"),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data: map[string]string{
					"title":    "this field is required",
					"desc":     "this field is required",
					"author":   "this field is required",
					"source":   "this field is required",
					"image":    "this field is required",
					"category": "this field is required",
				},
			}),
		},
		{name: "Created", token: getToken(t, admin), body: marchallObj(t, newCourse), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/courses/create-course", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var crs course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if crs.ID.IsZero() {
					t.Fatal("failed! zero course id")
				}
				if _, err := crsRepo.GetCourseByID(context.Background(), crs.ID); err != nil {
					t.Errorf("GetCourseByID() failed: %v", err)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_queryAll(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	crs1 := createCourse(t, "Go", now)
	crs2 := createCourse(t, "Rust", now.Add(time.Minute))

	req, rec := newRequest(http.MethodGet, "/api/courses/all")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, crs2, crs1)}, rec)
}

func Test_courseApi_retrieve(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	crs := createCourse(t, "Go")

	tests := []httpTest{
		{name: "Malformed id", path: "/api/courses/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "Unknown course", path: "/api/courses/" + primitive.NewObjectID().Hex(),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "Anonymous access", path: "/api/courses/" + crs.ID.Hex(), wantCode: http.StatusOK, wantData: marchallObj(t, crs)},
		{
			name: "Authenticated access", path: "/api/courses/" + crs.ID.Hex(), token: getToken(t, usr),
			wantCode: http.StatusOK, wantData: marchallObj(t, crs),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_update(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	crs := createCourse(t, "Go")

	rating := 4.5
	badRating := 6.0

	updated := crs
	updated.Title = "Advanced Go"
	updated.Rating = rating

	path := "/api/courses/" + crs.ID.Hex()

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: path, token: getToken(t, student),
			body:     marchallObj(t, course.UpdateCourse{Title: "Advanced Go"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Malformed id", path: "/api/courses/lol", token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Title: "Advanced Go"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Unknown course", path: "/api/courses/" + primitive.NewObjectID().Hex(), token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Title: "Advanced Go"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Rating out of range", path: path, token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Rating: &badRating}),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data:    map[string]string{"rating": "rating must be 5 or less"},
			}),
		},
		{
			name: "Updated", path: path, token: getToken(t, admin),
			body:     marchallObj(t, course.UpdateCourse{Title: "Advanced Go", Rating: &rating}),
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

func Test_courseApi_destroyMultiple(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	crs1 := createCourse(t, "Go")
	crs2 := createCourse(t, "Rust")

	body := func(ids ...string) []byte {
		return marchallObj(t, map[string][]string{"ids": ids})
	}

	tests := []httpTest{
		{name: "Auth required", body: body(crs1.ID.Hex()), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Deleted, unknown ids skipped", token: getToken(t, admin),
			body:     body(crs1.ID.Hex(), crs2.ID.Hex(), primitive.NewObjectID().Hex()),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]int{"deleted_count": 2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, "/api/courses/delete", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	if _, err := crsRepo.GetCourseByID(context.Background(), crs1.ID); err != course.ErrNotFound {
		t.Errorf("GetCourseByID() error = %v, want %v", err, course.ErrNotFound)
	}
}

func Test_courseApi_register(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	crs := createCourse(t, "Go")

	newReg := course.NewRegistration{
		UserID:   usr.ID.Hex(),
		CourseID: crs.ID.Hex(),
		Email:    usr.Email,
		Title:    crs.Title,
		Path:     "/courses/" + crs.ID.Hex(),
	}

	tests := []httpTest{
		{
			name: "required fields", body: []byte("{}"), wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data: map[string]string{
					"userId":   "this field is required",
					"courseId": "this field is required",
					"email":    "this field is required",
					"title":    "this field is required",
					"path":     "this field is required",
				},
			}),
		},
		{name: "Registered", body: marchallObj(t, newReg), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/courses/register", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var reg course.Registration
				if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if reg.ID.IsZero() {
					t.Fatal("failed! zero registration id")
				}
				if _, err := crsRepo.GetRegistrationByID(context.Background(), reg.ID); err != nil {
					t.Errorf("GetRegistrationByID() failed: %v", err)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_registrationsQuery(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	crs := createCourse(t, "Go")
	reg := createRegistration(t, student, crs)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "All registrations", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, reg)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/courses/registrations", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_approve(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	crs := createCourse(t, "Go")
	reg := createRegistration(t, student, crs)

	adminToken := getToken(t, admin)
	emailsvc.ClearSentMessages()

	body := func(id string) []byte {
		return marchallObj(t, map[string]string{"id": id})
	}

	tests := []httpTest{
		{name: "Auth required", body: body(reg.ID.Hex()), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), body: body(reg.ID.Hex()),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: adminToken, body: []byte("{}"),
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, httpErr{
				Message: "Invalid inputs passed, please check your data.", Code: http.StatusUnprocessableEntity,
				Data:    map[string]string{"id": "this field is required"},
			}),
		},
		{name: "Malformed id", token: adminToken, body: body("lol"), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "Unknown registration", token: adminToken, body: body(primitive.NewObjectID().Hex()),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "Approved", token: adminToken, body: body(reg.ID.Hex()), wantCode: http.StatusOK, wantData: marchallObj(t, reg)},
		{
			name: "Already approved", token: adminToken, body: body(reg.ID.Hex()),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/courses/approve", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// both sides of the enrollment link must be set
	ctx := context.Background()
	usr, err := usrRepo.GetUserByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if len(usr.Courses) != 1 || usr.Courses[0] != crs.ID {
		t.Errorf("user courses = %v, want [%v]", usr.Courses, crs.ID)
	}
	refreshedCrs, err := crsRepo.GetCourseByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourseByID() failed: %v", err)
	}
	if len(refreshedCrs.Students) != 1 || refreshedCrs.Students[0] != student.ID {
		t.Errorf("course students = %v, want [%v]", refreshedCrs.Students, student.ID)
	}
	if _, err = crsRepo.GetRegistrationByID(ctx, reg.ID); err != course.ErrRegistrationNotFound {
		t.Errorf("GetRegistrationByID() error = %v, want %v", err, course.ErrRegistrationNotFound)
	}

	// the registrant is notified
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("want 1 approval email, got %d", len(emailsvc.SentMessages))
	}
	if to := emailsvc.SentMessages[0].To[0].Address; to != student.Email {
		t.Errorf("approval email sent to %s, want %s", to, student.Email)
	}
}
