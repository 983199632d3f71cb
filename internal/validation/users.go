package validation

import "regexp"

const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldPassword = "password"

	maxFullNameLen = 20
	minPasswordLen = 8
)

// Letters plus the full whitespace class used by JavaScript-style validators,
// which is wider than RE2's ASCII-only \s.
var fullNamePattern = regexp.MustCompile(`^[a-zA-Z\p{Zs}\t\n\v\f\r\x{2028}\x{2029}\x{FEFF}]+$`)

var passwordRules = []Rule{
	{FieldPassword, NotEmpty, "Password is required"},
	{FieldPassword, IsString, "Password must be a string"},
	{FieldPassword, MinLen(minPasswordLen), "Password must be at least 8 characters"},
	{FieldPassword, StrongPassword, "Password must contain at least one lowercase letter, one uppercase letter, and one special character"},
}

// NewUserRules applies to account creation.
var NewUserRules = concat(
	[]Rule{
		{FieldFullName, NotEmpty, "Full name is required"},
		{FieldFullName, IsString, "Field must be a string"},
		{FieldFullName, Matches(fullNamePattern), "Field must only contain alphabetical characters and spaces"},
		{FieldFullName, MaxLen(maxFullNameLen), "Name cannot be more that 20 characters"},

		{FieldEmail, NotEmpty, "Email is required"},
		{FieldEmail, IsString, "Email must be a string"},
		{FieldEmail, IsEmail, "Invalid email format"},
	},
	passwordRules,
)

// UserEditRules applies to updates; email is only a lookup key there and is not checked.
var UserEditRules = concat(
	[]Rule{
		{FieldFullName, NotEmpty, "Full name is required"},
		{FieldFullName, IsString, "Name must be a string"},
		{FieldFullName, Matches(fullNamePattern), "Field must only contain alphabetical characters and spaces"},
		{FieldFullName, MaxLen(maxFullNameLen), "Name cannot be more that 20 characters"},
	},
	passwordRules,
)

// ValidateNewUser checks the fields of a create request.
func ValidateNewUser(fields Fields) error { return Validate(fields, NewUserRules) }

// ValidateUserEdit checks the fields of an update request.
func ValidateUserEdit(fields Fields) error { return Validate(fields, UserEditRules) }

func concat(parts ...[]Rule) []Rule {
	var out []Rule
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
