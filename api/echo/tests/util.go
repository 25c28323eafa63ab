package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/everly/elearning/api/echo"
	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/core/user"
	emailsvc "github.com/everly/elearning/services/email"
	inmemdb "github.com/everly/elearning/storage/database/inmem"
	"github.com/everly/elearning/storage/files"
)

var (
	conf    *core.Config
	usrRepo user.Repository
	crsRepo course.Repository
	fctRepo factor.Repository
	usrSvc  *user.Service
	crsSvc  *course.Service

	errMissingToken = httpErr{Message: "missing or malformed jwt", Code: http.StatusUnauthorized}
	errForbidden    = httpErr{Message: "You are not allowed to perform this action.", Code: http.StatusForbidden}
	errNotFound     = httpErr{Message: "Could not find the requested resource.", Code: http.StatusNotFound}
)

func setup(t *testing.T) echoapi.Server {
	t.Helper()

	conf = &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Elearning",
		SecretKey:        []byte("s3cr3t"),
		DefaultFromEmail: mail.Address{Address: "noreply@test.cd"},
		FrontendBaseURL:  "http://localhost:3000",
		Server: core.ServerConfig{
			Port:               "8000",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 8 * time.Hour,
		},
		Uploads: core.UploadsConfig{Dir: t.TempDir()},
	}

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	fctRepo = inmemdb.NewFactorRepository(db)

	// set up services
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	crsSvc = course.NewService(crsRepo, mailSvc, conf)
	fctSvc := factor.NewService(fctRepo)

	fileStore, err := files.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		t.Fatalf("files.NewLocalStore() failed: %v", err)
	}

	// set up server
	return echoapi.NewServer(&echoapi.ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		UserSvc:        usrSvc,
		CourseSvc:      crsSvc,
		FactorSvc:      fctSvc,
		Files:          fileStore,
		DisableReqLogs: true,
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Data    map[string]string `json:"data,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func createUser(t *testing.T, fname, email, pwd, role string, at ...time.Time) user.User {
	t.Helper()
	if pwd == "" {
		pwd = "V3ryS3cret"
	}
	usr := user.User{
		Email:     email,
		FirstName: fname,
		LastName:  strings.ToLower(fname),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if len(at) > 0 {
		usr.CreatedAt = at[0]
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func createCourse(t *testing.T, title string, at ...time.Time) course.Course {
	t.Helper()
	crs := course.Course{
		Title:     title,
		Desc:      "What " + title + " is all about.",
		Author:    []string{"Jane Doe"},
		Source:    []string{"https://videos.test.cd/" + strings.ToLower(title)},
		Image:     "https://images.test.cd/" + strings.ToLower(title) + ".png",
		Category:  "IT",
		CreatedAt: time.Now().UTC(),
	}
	if len(at) > 0 {
		crs.CreatedAt = at[0]
	}
	crs, err := crsRepo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func createRegistration(t *testing.T, usr user.User, crs course.Course) course.Registration {
	t.Helper()
	reg := course.Registration{
		UserID:    usr.ID.Hex(),
		CourseID:  crs.ID.Hex(),
		Email:     usr.Email,
		Title:     crs.Title,
		Path:      "/courses/" + crs.ID.Hex(),
		CreatedAt: time.Now().UTC(),
	}
	reg, err := crsRepo.CreateRegistration(context.Background(), reg)
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

func createRecord(t *testing.T, usr user.User, value string, at ...time.Time) factor.Record {
	t.Helper()
	rec := factor.Record{
		UserID:    usr.ID,
		Value:     value,
		Unit:      "kg",
		StartAt:   time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if len(at) > 0 {
		rec.StartAt = at[0]
		rec.CreatedAt = at[0]
	}
	rec, err := fctRepo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newUploadRequest(t *testing.T, path, token, field, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = fw.Write(content); err != nil {
			t.Fatalf("writing form file failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(usr, conf)
	token, err := echoapi.GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
