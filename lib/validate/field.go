package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/casos-paranormales/casos-cli/meta"
)

// 表单字段名
const (
	FieldCaseType        = "caseType"
	FieldCaseName        = "caseName"
	FieldCountry         = "country"
	FieldRegion          = "region"
	FieldAddress         = "address"
	FieldDescription     = "description"
	FieldFiles           = "files"
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldBirthday        = "birthday"
	FieldComment         = "commentText"
	FieldSubmit          = "submit"
)

// Form 当前表单快照
type Form map[string]string

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Field 校验单个字段，返回错误信息，通过时返回空串
func Field(name, value string, form Form) string {
	switch name {
	case FieldCaseType:
		if blank(value) {
			return meta.MsgSelectCaseType
		}
	case FieldCaseName:
		if blank(value) {
			return meta.MsgEnterCaseName
		}
	case FieldCountry:
		if blank(value) {
			return meta.MsgEnterCountry
		}
	case FieldAddress:
		if blank(value) {
			return meta.MsgEnterAddress
		}
	case FieldDescription:
		if blank(value) {
			return meta.MsgDescriptionRequired
		}
		if n := utf8.RuneCountInString(value); n < meta.DescriptionMinChars {
			return fmt.Sprintf(meta.MsgDescriptionMin, meta.DescriptionMinChars, n, meta.DescriptionMinChars)
		}
	case FieldEmail:
		if blank(value) {
			return meta.MsgEmailRequired
		}
		if !emailRe.MatchString(value) {
			return meta.MsgEmailInvalid
		}
	case FieldUsername:
		if blank(value) {
			return meta.MsgUsernameRequired
		}
		if utf8.RuneCountInString(value) < meta.UsernameMinChars {
			return meta.MsgUsernameMin
		}
	case FieldPassword:
		if blank(value) {
			return meta.MsgPasswordRequired
		}
		if utf8.RuneCountInString(value) < meta.PasswordMinChars {
			return meta.MsgPasswordMin
		}
	case FieldConfirmPassword:
		if value != form[FieldPassword] {
			return meta.MsgPasswordMismatch
		}
	case FieldFirstName:
		if blank(value) {
			return meta.MsgFirstNameRequired
		}
	case FieldLastName:
		if blank(value) {
			return meta.MsgLastNameRequired
		}
	case FieldBirthday:
		if blank(value) {
			return meta.MsgBirthdayRequired
		}
	case FieldComment:
		if blank(value) {
			return meta.MsgCommentEmpty
		}
		if n := utf8.RuneCountInString(strings.TrimSpace(value)); n > meta.CommentMaxChars {
			return fmt.Sprintf(meta.MsgCommentTooLong, n)
		}
	}
	return ""
}

// Fields 校验一组字段，只返回未通过的字段
func Fields(names []string, form Form) map[string]string {
	errs := make(map[string]string)
	for _, name := range names {
		if msg := Field(name, form[name], form); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}
