package brackets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		r    rune
		kind Kind
		open bool
		ok   bool
	}{
		{'(', Round, true, true},
		{')', Round, false, true},
		{'[', Square, true, true},
		{']', Square, false, true},
		{'{', Curly, true, true},
		{'}', Curly, false, true},
		{'<', Angle, true, true},
		{'>', Angle, false, true},
		{'a', 0, false, false},
		{'«', 0, false, false},
		{'\n', 0, false, false},
	}
	for _, tt := range tests {
		k, open, ok := Classify(tt.r)
		assert.Equal(t, tt.ok, ok, "%q", tt.r)
		if tt.ok {
			assert.Equal(t, tt.kind, k, "%q", tt.r)
			assert.Equal(t, tt.open, open, "%q", tt.r)
		}
		assert.Equal(t, tt.ok, IsBracket(tt.r), "%q", tt.r)
	}
}

func TestKindRunesRoundTrip(t *testing.T) {
	seen := map[rune]bool{}
	for _, k := range Kinds() {
		for _, r := range []rune{k.Open(), k.Close()} {
			assert.False(t, seen[r], "%q belongs to two kinds", r)
			seen[r] = true
			got, ok := KindOf(r)
			require.True(t, ok)
			assert.Equal(t, k, got)
		}
	}
	assert.Len(t, seen, 2*int(numKinds))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("pointy")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestMarkJSON(t *testing.T) {
	b, err := json.Marshal(Mark{Kind: Curly, Offset: 3, Open: true, Level: 1, Match: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"curly","offset":3,"open":true,"level":1,"match":9}`, string(b))

	_, err = json.Marshal(Mark{Kind: numKinds})
	assert.Error(t, err)
}

func TestKindUnmarshalText(t *testing.T) {
	var m Mark
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"angle","offset":1,"match":-1}`), &m))
	assert.Equal(t, Mark{Kind: Angle, Offset: 1, Match: NoMatch}, m)
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"oval"}`), &m))
}
