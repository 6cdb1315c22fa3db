package validate

import (
	"strconv"
	"strings"
	"testing"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
)

func TestRequiredTextFields(t *testing.T) {
	cases := []struct {
		field string
		want  string
	}{
		{FieldCaseType, meta.MsgSelectCaseType},
		{FieldCaseName, meta.MsgEnterCaseName},
		{FieldCountry, meta.MsgEnterCountry},
		{FieldAddress, meta.MsgEnterAddress},
		{FieldDescription, meta.MsgDescriptionRequired},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			for _, v := range []string{"", " ", "\t\n  "} {
				assert.Equal(t, tc.want, Field(tc.field, v, Form{}))
			}
		})
	}
}

func TestRequiredTextFieldsAcceptNonBlank(t *testing.T) {
	for _, f := range []string{FieldCaseType, FieldCaseName, FieldCountry, FieldAddress} {
		assert.Empty(t, Field(f, "x", Form{}), f)
	}
}

func TestDescriptionLength(t *testing.T) {
	for _, n := range []int{1, 10, 49, 50, 51, 200} {
		value := strings.Repeat("a", n)
		msg := Field(FieldDescription, value, Form{})
		if n < meta.DescriptionMinChars {
			assert.Contains(t, msg, "Mínimo 50 caracteres")
			assert.Contains(t, msg, "("+strconv.Itoa(n)+"/50)")
		} else {
			assert.Empty(t, msg)
		}
	}
}

func TestDescriptionCountsRunes(t *testing.T) {
	value := strings.Repeat("ñ", 50)
	assert.Empty(t, Field(FieldDescription, value, Form{}))
	assert.Equal(t, "Mínimo 50 caracteres (49/50)", Field(FieldDescription, strings.Repeat("é", 49), Form{}))
}

func TestCommentLength(t *testing.T) {
	assert.Equal(t, meta.MsgCommentEmpty, Field(FieldComment, "  ", Form{}))
	assert.Empty(t, Field(FieldComment, strings.Repeat("ñ", 500), Form{}))
	// 首尾空白不计入长度
	assert.Empty(t, Field(FieldComment, " "+strings.Repeat("a", 500)+"\n", Form{}))
	assert.Equal(t, "Máximo 500 caracteres (501/500)", Field(FieldComment, strings.Repeat("é", 501), Form{}))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, meta.MsgEmailRequired, Field(FieldEmail, "", Form{}))
	assert.Equal(t, meta.MsgEmailInvalid, Field(FieldEmail, "fantasma", Form{}))
	assert.Equal(t, meta.MsgEmailInvalid, Field(FieldEmail, "a@b", Form{}))
	assert.Equal(t, meta.MsgEmailInvalid, Field(FieldEmail, "a b@c.de", Form{}))
	assert.Empty(t, Field(FieldEmail, "ovni@cielo.mx", Form{}))
}

func TestUsernameAndPassword(t *testing.T) {
	assert.Equal(t, meta.MsgUsernameMin, Field(FieldUsername, "ab", Form{}))
	assert.Empty(t, Field(FieldUsername, "abc", Form{}))

	assert.Equal(t, meta.MsgPasswordMin, Field(FieldPassword, "12345", Form{}))
	assert.Empty(t, Field(FieldPassword, "123456", Form{}))

	form := Form{FieldPassword: "secreto1"}
	assert.Equal(t, meta.MsgPasswordMismatch, Field(FieldConfirmPassword, "secreto2", form))
	assert.Empty(t, Field(FieldConfirmPassword, "secreto1", form))
}

func TestFieldsReturnsOnlyFailures(t *testing.T) {
	form := Form{
		FieldCaseType: "2",
		FieldCaseName: "",
		FieldCountry:  "México",
	}
	errs := Fields([]string{FieldCaseType, FieldCaseName, FieldCountry, FieldAddress}, form)
	assert.Equal(t, map[string]string{
		FieldCaseName: meta.MsgEnterCaseName,
		FieldAddress:  meta.MsgEnterAddress,
	}, errs)
}

func TestUnknownFieldHasNoRule(t *testing.T) {
	assert.Empty(t, Field(FieldRegion, "", Form{}))
}
