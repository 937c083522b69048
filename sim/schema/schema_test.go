package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const intSchema = `{
  "type": "object",
  "properties": { "n": { "type": "integer" } },
  "required": ["n"]
}`

func TestRegisterAndValidate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("probe", []byte(intSchema)))
	require.True(t, r.Has("probe"))

	require.NoError(t, r.Validate("probe", []byte(`{"n": 3}`)))
	require.Error(t, r.Validate("probe", []byte(`{"n": "not a number"}`)))
}

func TestValidateWithoutSchemaAlwaysPasses(t *testing.T) {
	r := New()
	require.NoError(t, r.Validate("unregistered", []byte(`{"anything": true}`)))
}

func TestRegisterTwiceForSameTagFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("probe", []byte(intSchema)))
	require.Error(t, r.Register("probe", []byte(intSchema)))
}

func TestRegisterInvalidSchemaFails(t *testing.T) {
	r := New()
	require.Error(t, r.Register("probe", []byte("not json")))
}
