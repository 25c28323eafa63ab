package user

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/everly/elearning/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid role"

	// password policy
	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)

	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// allRolesValidation checks that a provided role is one of AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		validatePassword(nu.Password, nu.FirstName, nu.LastName, nu.Email, sl)
	}
}

// validatePassword applies the password policy to the provided password:
// - not entirely numeric
// - not similar to user attributes
// Length is covered by the `min=6` field tag.
func validatePassword(pwd, fname, lname, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if pwd == "" {
		return
	}

	var digitCount int
	for _, char := range pwd {
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(pwd) {
		reportErr(pwdNotAllNumTag)
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	if getRatio(lpwd, strings.ToLower(fname)) >= pwdMaxSim ||
		getRatio(lpwd, strings.ToLower(lname)) >= pwdMaxSim ||
		getRatio(lpwd, strings.ToLower(email)) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}
}
