package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/rtfeed/internal/domain"
)

const settlementSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "integer"},
		"amount": {"type": "number"},
		"token": {"type": "string"}
	},
	"required": ["id", "amount"],
	"additionalProperties": false
}`

func TestValidator_Valid(t *testing.T) {
	v := NewValidator(0)

	res, err := v.Validate([]byte(settlementSchema), []byte(`{"id": 1, "amount": 12.5, "token": "USDC"}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidator_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contains []string
	}{
		{
			name:     "wrong type",
			data:     `{"id": 1, "amount": "ten"}`,
			contains: []string{"data/amount"},
		},
		{
			name:     "missing required",
			data:     `{"id": 1}`,
			contains: []string{"amount"},
		},
		{
			name: "additional properties",
			data: `{"id": 1, "amount": 2, "memo": "x"}`,
			contains: []string{
				"data/memo",
				"data must NOT have additional properties: memo",
			},
		},
	}

	v := NewValidator(4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate([]byte(settlementSchema), []byte(tt.data))
			require.NoError(t, err)
			assert.False(t, res.Valid)
			require.NotEmpty(t, res.Errors)

			joined := strings.Join(res.Errors, "\n")
			for _, want := range tt.contains {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestValidator_AllErrorsCollected(t *testing.T) {
	v := NewValidator(0)

	res, err := v.Validate([]byte(settlementSchema), []byte(`{"id": "one", "amount": 1, "a": 1, "b": 2}`))
	require.NoError(t, err)
	require.False(t, res.Valid)

	joined := strings.Join(res.Errors, "\n")
	assert.Contains(t, joined, "data/id")
	assert.Contains(t, joined, "data must NOT have additional properties:")
	assert.Contains(t, res.Errors[len(res.Errors)-1], "a")
	assert.Contains(t, res.Errors[len(res.Errors)-1], "b")
}

func TestValidator_SchemaErrors(t *testing.T) {
	v := NewValidator(0)

	_, err := v.Validate([]byte(`{"type": `), []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrSchemaCompile)

	assert.ErrorIs(t, v.Compile([]byte(`not json`)), domain.ErrSchemaCompile)
	assert.NoError(t, v.Compile([]byte(settlementSchema)))
}

func TestValidator_MalformedData(t *testing.T) {
	v := NewValidator(0)

	_, err := v.Validate([]byte(settlementSchema), []byte(`{"id": `))
	assert.ErrorIs(t, err, domain.ErrMalformedFrame)
}

func TestValidator_Cache(t *testing.T) {
	v := NewValidator(1)

	require.NoError(t, v.Compile([]byte(settlementSchema)))
	assert.Equal(t, 1, v.cache.Len())

	require.NoError(t, v.Compile([]byte(`{"type": "object"}`)))
	assert.Equal(t, 1, v.cache.Len(), "cache is bounded")

	res, err := v.Validate([]byte(`{"type": "object"}`), []byte(`{"anything": true}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
