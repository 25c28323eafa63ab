package user

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/everly/elearning/core"
)

type stubRepo struct {
	Repository
	emailTaken bool
}

func (r stubRepo) CheckEmailUniqueness(context.Context, string, ...User) error {
	if r.emailTaken {
		return ErrEmailExists
	}
	return nil
}

func TestUser_password(t *testing.T) {
	usr := User{}
	if err := usr.SetPassword("V3ryS3cret"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("V3ryS3cret"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("lol"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestUser_roleHelpers(t *testing.T) {
	tests := []struct {
		role                      string
		student, teacher, isAdmin bool
	}{
		{role: RoleStudent, student: true},
		{role: RoleTeacher, teacher: true},
		{role: RoleAdmin, isAdmin: true},
		{role: "lol"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := User{Role: tt.role}
			if usr.IsStudent() != tt.student || usr.IsTeacher() != tt.teacher || usr.IsAdmin() != tt.isAdmin {
				t.Errorf("role helpers mismatch for %q", tt.role)
			}
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	svc := &Service{repo: stubRepo{}}
	takenSvc := &Service{repo: stubRepo{emailTaken: true}}

	newUser := func(pwd string) NewUser {
		return NewUser{FirstName: "Awe", LastName: "Doe", Email: "awe@test.cd", Password: pwd}
	}

	tests := []struct {
		name     string
		nu       NewUser
		svc      *Service
		wantTags map[string]string // field -> failed tag
		wantErr  error
	}{
		{name: "ok", nu: newUser("V3ryS3cret"), svc: svc},
		{
			name: "required fields", nu: NewUser{}, svc: svc,
			wantTags: map[string]string{"firstname": "required", "lastname": "required", "email": "required", "password": "required"},
		},
		{
			name: "invalid email", nu: NewUser{FirstName: "Awe", LastName: "Doe", Email: "lol", Password: "V3ryS3cret"}, svc: svc,
			wantTags: map[string]string{"email": "email"},
		},
		{name: "short password", nu: newUser("lmd"), svc: svc, wantTags: map[string]string{"password": "min"}},
		{name: "all-numeric password", nu: newUser("123456"), svc: svc, wantTags: map[string]string{"password": "pwdnotallnum"}},
		{name: "password similar to email", nu: newUser("awe@test.cd"), svc: svc, wantTags: map[string]string{"password": "pwdtoosim"}},
		{
			name: "invalid role", svc: svc,
			nu:       NewUser{FirstName: "Awe", LastName: "Doe", Email: "awe@test.cd", Password: "V3ryS3cret", Role: "lol"},
			wantTags: map[string]string{"role": "allroles"},
		},
		{name: "email taken", nu: newUser("V3ryS3cret"), svc: takenSvc, wantErr: ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(tt.svc)
			if tt.wantTags == nil && tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				return
			}

			if tt.wantErr != nil {
				vErr, ok := err.(*core.ValidationError)
				if !ok {
					t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
				}
				if vErr.Err != tt.wantErr {
					t.Errorf("Validate() error = %v, want %v", vErr.Err, tt.wantErr)
				}
				return
			}

			fldErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v, want validator.ValidationErrors", err)
			}
			got := make(map[string]string, len(fldErrs))
			for _, fe := range fldErrs {
				got[fe.Field()] = fe.Tag()
			}
			for fld, tag := range tt.wantTags {
				if got[fld] != tag {
					t.Errorf("field %q failed tag = %q, want %q", fld, got[fld], tag)
				}
			}
		})
	}
}

func TestQueryFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		qf      QueryFilter
		want    QueryFilter
		wantErr bool
	}{
		{name: "defaults", qf: QueryFilter{}, want: QueryFilter{Page: 1, Limit: 10}},
		{name: "explicit", qf: QueryFilter{Page: 3, Limit: 5, Role: " GV "}, want: QueryFilter{Page: 3, Limit: 5, Role: "GV"}},
		{name: "negative page", qf: QueryFilter{Page: -1}, wantErr: true},
		{name: "negative limit", qf: QueryFilter{Limit: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.qf.Validate()
			if tt.wantErr {
				if _, ok := err.(*core.ValidationError); !ok {
					t.Errorf("Validate() error = %v, want *core.ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			if tt.qf != tt.want {
				t.Errorf("Validate() = %+v, want %+v", tt.qf, tt.want)
			}
		})
	}
}

func TestQueryFilter_TotalPages(t *testing.T) {
	tests := []struct {
		limit int
		total int64
		want  int64
	}{
		{limit: 10, total: 0, want: 0},
		{limit: 10, total: 1, want: 1},
		{limit: 10, total: 10, want: 1},
		{limit: 10, total: 11, want: 2},
		{limit: 5, total: 12, want: 3},
		{limit: 0, total: 12, want: 0},
	}
	for _, tt := range tests {
		qf := QueryFilter{Limit: tt.limit}
		if got := qf.TotalPages(tt.total); got != tt.want {
			t.Errorf("TotalPages(%d) with limit %d = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
