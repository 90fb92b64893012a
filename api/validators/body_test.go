package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

type addItemBody struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,gt=0"`
}

func decode(t *testing.T, body string, dest any) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	return DecodeJSONBody(req, dest)
}

func TestDecodeJSONBody(t *testing.T) {
	var dest addItemBody
	require.NoError(t, decode(t, `{"item":"wings","quantity":2}`, &dest))
	assert.Equal(t, "wings", dest.Item)
	assert.Equal(t, 2, dest.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest addItemBody
	err := decode(t, `{"item":"wings","bogus":true}`, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	var dest addItemBody
	err := decode(t, `{"item":`, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyValidationMessages(t *testing.T) {
	var dest addItemBody
	err := decode(t, `{"quantity":-1}`, &dest)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["item"])
	assert.Equal(t, "must be greater than 0", details["quantity"])
}
