package fetcher

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ShapesYieldSameItems(t *testing.T) {
	bodies := map[string]string{
		"array":          `[{"id":1,"name":"cliente"}]`,
		"data wrapper":   `{"data":[{"id":1,"name":"cliente"}]}`,
		"single object":  `{"id":1,"name":"cliente"}`,
		"encoded array":  `"[{\"id\":1,\"name\":\"cliente\"}]"`,
		"encoded object": `"{\"id\":1,\"name\":\"cliente\"}"`,
	}

	c := &Client[item]{validate: validateItem, sentinel: DefaultSentinel, logger: discardLogger()}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			v, err := decodeJSON([]byte(body))
			require.NoError(t, err)

			p, err := normalize(v, DefaultSentinel)
			require.NoError(t, err)

			out := c.collect(p.elements)
			require.NoError(t, out.err)
			assert.Equal(t, []item{{ID: 1, Name: "cliente"}}, out.items)
		})
	}
}

func TestNormalize_Pending(t *testing.T) {
	for _, body := range []string{
		`{"message":"Workflow was started"}`,
		`"{\"message\":\"Workflow was started\"}"`,
	} {
		v, err := decodeJSON([]byte(body))
		require.NoError(t, err)

		p, err := normalize(v, DefaultSentinel)
		require.NoError(t, err)
		assert.Equal(t, shapePending, p.shape)
	}
}

func TestNormalize_OtherMessageIsData(t *testing.T) {
	v, err := decodeJSON([]byte(`{"message":"done","id":3}`))
	require.NoError(t, err)

	p, err := normalize(v, DefaultSentinel)
	require.NoError(t, err)
	assert.Equal(t, shapeSingle, p.shape)
	assert.Len(t, p.elements, 1)
}

func TestNormalize_Rejects(t *testing.T) {
	for _, body := range []string{`42`, `true`, `null`, `"not json inside"`} {
		v, err := decodeJSON([]byte(body))
		require.NoError(t, err)

		_, err = normalize(v, DefaultSentinel)
		assert.True(t, errors.Is(err, ErrMalformedResponse), body)
	}
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	_, err := decodeJSON([]byte(`[1] [2]`))
	assert.Error(t, err)

	_, err = decodeJSON([]byte(``))
	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
