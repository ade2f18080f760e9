package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductInputPrice(t *testing.T) {
	cases := map[string]*float64{
		`{"title":"Pipe","price":120}`:      ptr(120),
		`{"title":"Pipe","price":"120"}`:    ptr(120),
		`{"title":"Pipe","price":" 99.5 "}`: ptr(99.5),
		`{"title":"Pipe","price":null}`:     nil,
		`{"title":"Pipe"}`:                  nil,
	}
	for body, want := range cases {
		var in ProductInput
		require.NoError(t, json.Unmarshal([]byte(body), &in), body)
		p := in.Product()
		if want == nil {
			require.Nil(t, p.Price, body)
			continue
		}
		require.NotNil(t, p.Price, body)
		require.InDelta(t, *want, *p.Price, 0.0001, body)
	}

	for _, body := range []string{`{"price":"call us"}`, `{"price":true}`} {
		var in ProductInput
		require.Error(t, json.Unmarshal([]byte(body), &in), body)
	}
}

func TestProductInputDefaults(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Valve"}`), &in))
	p := in.Product()
	require.Equal(t, "Valve", p.Title)
	require.Equal(t, DefaultProductImage, p.Image)
	require.Empty(t, p.Description)
}

func ptr(v float64) *float64 { return &v }
